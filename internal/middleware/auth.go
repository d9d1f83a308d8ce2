package middleware

import (
	"net/http"
	"strings"

	"github.com/hongminglow/accounts-be/internal/auth"
	"github.com/hongminglow/accounts-be/internal/http/respond"
	"github.com/hongminglow/accounts-be/internal/logging"
)

// TokenAuthenticator resolves a raw access token to an identity.
type TokenAuthenticator interface {
	Authenticate(raw string) (auth.Identity, error)
}

// Authenticate rejects requests without a valid bearer access token and
// stores the resolved identity in the request context.
func Authenticate(tokens TokenAuthenticator, log logging.Logger) func(http.Handler) http.Handler {
	log = logging.ForModule(log, "auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err == nil {
				var id auth.Identity
				if id, err = tokens.Authenticate(raw); err == nil {
					next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
					return
				}
			}
			log.Warn(r.Context(), "authentication failed", "path", r.URL.Path, "reason", err.Error())
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			respond.Error(w, http.StatusUnauthorized, err.Error())
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", auth.ErrNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}
