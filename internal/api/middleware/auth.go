package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vidstream/vidstream-api/internal/api/response"
	"github.com/vidstream/vidstream-api/internal/domain"
)

type contextKey string

const (
	UserKey contextKey = "user"

	AccessTokenCookie = "accessToken"
)

// Authenticator resolves an access token to the stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// Auth rejects requests without a valid access token. The token is read
// from the accessToken cookie, then from an "Authorization: Bearer" header.
// Every request is verified and the user reloaded; nothing is cached.
func Auth(authenticator Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				response.Fail(w, http.StatusUnauthorized, "unauthorized request")
				return
			}

			user, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				response.Error(w, r, err, log)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetUser returns the user attached by Auth.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}
