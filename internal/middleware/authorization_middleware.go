package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/orm"
)

const APITokenHeader = "X-API-Token"

// AccessTokenParser resolves a bearer token to a viewer id.
type AccessTokenParser interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}

// TokenVerifier resolves an API token to its stored row.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, plain string) (*orm.Token, error)
}

// NewAuthorizationMiddleware records who is calling. Both credentials are
// optional here; a present but invalid one rejects the request.
func NewAuthorizationMiddleware(logger *zap.Logger, parser AccessTokenParser, tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if header := r.Header.Get("Authorization"); header != "" {
				bearer, ok := strings.CutPrefix(header, "Bearer ")
				if !ok || strings.TrimSpace(bearer) == "" {
					lib.WriteError(w, r, lib.UnauthenticatedError(""))
					return
				}

				id, err := parser.ParseAccessToken(strings.TrimSpace(bearer))
				if err != nil {
					logger.Debug("invalid access token", zap.Error(err))
					lib.WriteError(w, r, lib.UnauthenticatedError(""))
					return
				}
				ctx = SetUserID(ctx, id)
			}

			if plain := r.Header.Get(APITokenHeader); plain != "" {
				token, err := tokens.VerifyToken(ctx, plain)
				if err != nil {
					if !lib.IsClientError(err) {
						logger.Error("error verifying api token", zap.Error(err))
					}
					lib.WriteError(w, r, err)
					return
				}
				ctx = SetTokenID(ctx, token.ID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests without a viewer.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r.Context()); !ok {
			lib.WriteError(w, r, lib.UnauthenticatedError(""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireToken rejects requests not authenticated by an API token.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetTokenID(r.Context()); !ok {
			lib.WriteError(w, r, lib.UnauthenticatedError("api token required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
