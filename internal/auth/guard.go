package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned when a credential does not match the token.
var ErrUnauthorized = errors.New("invalid personal access token")

type contextKey struct{}

// Guard checks a single shared bearer token
type Guard struct {
	token string
}

// NewGuard creates a guard for token. An empty token rejects everything.
func NewGuard(token string) *Guard {
	return &Guard{token: token}
}

// Configured reports whether a token is set
func (g *Guard) Configured() bool {
	return g.token != ""
}

// Verify returns credential unchanged when it equals the configured token.
func (g *Guard) Verify(credential string) (string, error) {
	if !g.Configured() {
		return "", ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(credential), []byte(g.token)) != 1 {
		return "", ErrUnauthorized
	}
	return credential, nil
}

// Middleware rejects requests without the right bearer credential with 401
// and a "WWW-Authenticate: Bearer" challenge.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential, err := g.Verify(BearerCredential(r))
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid personal access token"})
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, credential)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerCredential extracts the credential of an "Authorization: Bearer"
// header. Everything after the first space is the credential, unmodified.
func BearerCredential(r *http.Request) string {
	scheme, credential, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return credential
}

// CredentialFromContext returns the credential accepted by the guard
func CredentialFromContext(ctx context.Context) (string, bool) {
	credential, ok := ctx.Value(contextKey{}).(string)
	return credential, ok
}
