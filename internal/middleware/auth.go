package middleware

import (
	"context"
	"net/http"
	"strings"

	"chantierplus/internal/apperr"
	"chantierplus/internal/models"
)

// Authenticator — проверка bearer-токена (см. auth.Service).
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*models.UserProfile, error)
}

const userKey ctxKey = "user"

// Authenticate кладёт профиль пользователя в контекст или отвечает 401.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := a.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				models.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func WithUser(ctx context.Context, u *models.UserProfile) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// CurrentUser — профиль, установленный Authenticate.
func CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	if u, ok := ctx.Value(userKey).(*models.UserProfile); ok && u != nil {
		return u, nil
	}
	return nil, apperr.Unauthenticated("not authenticated")
}
