// Package identity maps free-form usernames onto the canonical handles and
// synthetic email addresses stored by the identity provider.
package identity

import (
	"fmt"
	"regexp"
	"strings"
)

// EmailDomain is appended to handles to build the provider-facing email.
const EmailDomain = "welth.app"

// Handle length bounds accepted at registration. The upper bound matches the
// users.username column.
const (
	MinHandleLength = 3
	MaxHandleLength = 64
)

var (
	// Unicode separators count as whitespace, as do the BOM and vertical tab
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9._-]`)
	dotRun        = regexp.MustCompile(`\.+`)
)

// Provider messages recognised by HumanizeProviderError.
const (
	ProviderSignupsDisabled   = "Email signups are disabled"
	ProviderAlreadyRegistered = "User already registered"
	ProviderInvalidLogin      = "Invalid login credentials"
)

const fallbackMessage = "Ocurrió un error"

// Normalize canonicalizes a raw username. The result contains only
// [a-z0-9._-], has no doubled dots and never starts or ends with a dot.
// It may be empty; callers must reject empty handles.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = whitespaceRun.ReplaceAllString(s, ".")
	s = disallowed.ReplaceAllString(s, "")
	s = dotRun.ReplaceAllString(s, ".")
	return strings.Trim(s, ".")
}

// SyntheticEmail returns the provider email for raw, or "" when raw
// normalizes to nothing.
func SyntheticEmail(raw string) string {
	handle := Normalize(raw)
	if handle == "" {
		return ""
	}
	return handle + "@" + EmailDomain
}

// ValidateHandle rejects handles that are too short or too long to register.
func ValidateHandle(handle string) error {
	if len(handle) < MinHandleLength {
		return fmt.Errorf("El usuario debe tener al menos %d caracteres (a-z, 0-9, . _ -)", MinHandleLength)
	}
	if len(handle) > MaxHandleLength {
		return fmt.Errorf("El usuario debe tener como máximo %d caracteres", MaxHandleLength)
	}
	return nil
}

// HumanizeProviderError turns identity provider messages into user-facing text.
func HumanizeProviderError(message string) string {
	raw := strings.TrimSpace(message)
	lower := strings.ToLower(raw)

	switch {
	case strings.Contains(lower, "email signups are disabled"):
		return "El registro está deshabilitado: 'Email signups are disabled'. " +
			"Habilita el registro de nuevos usuarios en la configuración de autenticación."
	case strings.Contains(lower, "user already registered"):
		return "Ese usuario ya existe. Intenta con otro."
	case raw == "":
		return fallbackMessage
	}
	return raw
}
