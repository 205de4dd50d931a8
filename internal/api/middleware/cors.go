package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// UIMessageStreamHeader marks a chat response as a UI message stream. The
// browser client only reads it when CORS exposes it.
const UIMessageStreamHeader = "X-Vercel-AI-UI-Message-Stream"

// devOrigins are the local frontend dev servers
var devOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// CORS lets the Welth frontend call the API with its auth cookies
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, UIMessageStreamHeader},
		AllowCredentials: true,
		MaxAge:           600,
	})
}

// FrontendCORS allows frontendURL, plus the local dev servers when the
// frontend itself runs locally
func FrontendCORS(frontendURL string) func(http.Handler) http.Handler {
	origins := []string{strings.TrimSuffix(frontendURL, "/")}
	if strings.Contains(frontendURL, "localhost") || strings.Contains(frontendURL, "127.0.0.1") {
		for _, o := range devOrigins {
			if o != origins[0] {
				origins = append(origins, o)
			}
		}
	}
	return CORS(origins)
}
