package middleware

import (
	"context"
	"net/http"

	"github.com/edvin/machines/internal/api/response"
	"github.com/edvin/machines/internal/model"
)

// GetAPIKey returns the authenticated key of the request.
func GetAPIKey(ctx context.Context) *model.APIKey {
	key, _ := ctx.Value(APIKeyKey).(*model.APIKey)
	return key
}

// GetPrincipal returns the user the request acts for, or nil.
func GetPrincipal(ctx context.Context) *model.Principal {
	p, _ := ctx.Value(PrincipalKey).(*model.Principal)
	return p
}

// RequireScope rejects keys that lack scope.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetAPIKey(r.Context())
			if key == nil || !key.HasScope(scope) {
				response.WriteError(w, http.StatusForbidden, "insufficient scope: requires "+scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
