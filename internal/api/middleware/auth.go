package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/api/response"
	"github.com/edvin/machines/internal/core"
	"github.com/edvin/machines/internal/model"
)

type contextKey string

const (
	APIKeyKey    contextKey = "api_key"
	PrincipalKey contextKey = "principal"
)

// UserIDHeader carries the CTF user the front end acts for.
const UserIDHeader = "X-User-ID"

// KeyAuthenticator resolves raw API keys.
type KeyAuthenticator interface {
	Authenticate(ctx context.Context, rawKey string) (*model.APIKey, error)
}

// Auth validates the caller's API key and, when the X-User-ID header is
// present, attaches the principal the request acts for.
func Auth(keys KeyAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractAPIKey(r)
			if raw == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			key, err := keys.Authenticate(r.Context(), raw)
			if err != nil {
				if !errors.Is(err, core.ErrAuthRequired) {
					zerolog.Ctx(r.Context()).Error().Err(err).Msg("api key lookup failed")
				}
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyKey, key)
			if v := r.Header.Get(UserIDHeader); v != "" {
				userID, err := strconv.ParseInt(v, 10, 64)
				if err != nil || userID <= 0 {
					response.WriteError(w, http.StatusBadRequest, "invalid "+UserIDHeader+" header")
					return
				}
				ctx = context.WithValue(ctx, PrincipalKey, &model.Principal{
					UserID: userID,
					Admin:  key.HasScope(model.ScopeAdmin),
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractAPIKey reads the key from X-API-Key, falling back to a bearer token.
func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	return ""
}
