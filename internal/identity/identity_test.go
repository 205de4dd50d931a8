package identity

import (
	"regexp"
	"strings"
	"testing"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9._-]*$`)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "already canonical", raw: "maria", want: "maria"},
		{name: "trim and lowercase", raw: "  María José  ", want: "mara.jos"},
		{name: "whitespace runs become one dot", raw: "ana \t  lopez", want: "ana.lopez"},
		{name: "collapse dots", raw: "a...b", want: "a.b"},
		{name: "leading and trailing dots", raw: "..juan..", want: "juan"},
		{name: "dot revealed after stripping", raw: ". !juan! .", want: "juan"},
		{name: "keeps underscore and dash", raw: "Ana_Lopez-99", want: "ana_lopez-99"},
		{name: "no-break space", raw: "ana\u00a0maria", want: "ana.maria"},
		{name: "em space", raw: "ana\u2003maria", want: "ana.maria"},
		{name: "ideographic space and bom", raw: "ana\u3000\ufeffmaria", want: "ana.maria"},
		{name: "vertical tab", raw: "ana\vmaria", want: "ana.maria"},
		{name: "garbage", raw: "!!!", want: ""},
		{name: "empty", raw: "", want: ""},
		{name: "only spaces", raw: "    ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", " ", ".", "..", "a b", "A  B  C", "x.-.y", "-._-", "José Ñandú", ". . .",
		"tab\tsep", "dots...and   spaces", "UPPER_case-Mixed.99", "é.é", "!a!.!b!",
		"ana\u00a0maria", "\u2003lead\u2003trail\u2003", "a\u202f\u205fb",
	}

	for _, raw := range inputs {
		once := Normalize(raw)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
		if !handlePattern.MatchString(once) {
			t.Errorf("Normalize(%q) = %q contains disallowed characters", raw, once)
		}
		if strings.HasPrefix(once, ".") || strings.HasSuffix(once, ".") || strings.Contains(once, "..") {
			t.Errorf("Normalize(%q) = %q has stray dots", raw, once)
		}
	}
}

func TestSyntheticEmail(t *testing.T) {
	if got := SyntheticEmail("  Ana Lopez "); got != "ana.lopez@welth.app" {
		t.Errorf("SyntheticEmail() = %q", got)
	}
	if got := SyntheticEmail("???"); got != "" {
		t.Errorf("SyntheticEmail(garbage) = %q, want empty", got)
	}
}

func TestValidateHandle(t *testing.T) {
	if err := ValidateHandle("ab"); err == nil {
		t.Error("ValidateHandle(ab) = nil, want error")
	}
	if err := ValidateHandle("abc"); err != nil {
		t.Errorf("ValidateHandle(abc) = %v", err)
	}
	if err := ValidateHandle(strings.Repeat("a", MaxHandleLength)); err != nil {
		t.Errorf("ValidateHandle(max length) = %v", err)
	}
	if err := ValidateHandle(strings.Repeat("a", MaxHandleLength+1)); err == nil {
		t.Error("ValidateHandle(too long) = nil, want error")
	}
}

func TestHumanizeProviderError(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "already registered", message: "User already registered", want: "Ese usuario ya existe. Intenta con otro."},
		{name: "case insensitive", message: "AuthApiError: USER ALREADY REGISTERED", want: "Ese usuario ya existe. Intenta con otro."},
		{name: "passthrough", message: "  Invalid login credentials ", want: "Invalid login credentials"},
		{name: "empty", message: "", want: "Ocurrió un error"},
		{name: "blank", message: "   ", want: "Ocurrió un error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanizeProviderError(tt.message); got != tt.want {
				t.Errorf("HumanizeProviderError(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}

	if got := HumanizeProviderError(ProviderSignupsDisabled); !strings.Contains(got, "deshabilitado") {
		t.Errorf("signups disabled message = %q", got)
	}
}
