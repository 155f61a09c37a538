package middleware

import (
	"net/http"
	"strings"

	"github.com/mvasquez/pricegrid-backend/api/responses"
	pkgAuth "github.com/mvasquez/pricegrid-backend/pkg/auth"
	"github.com/mvasquez/pricegrid-backend/pkg/config"
	pkgerrors "github.com/mvasquez/pricegrid-backend/pkg/errors"
	"github.com/mvasquez/pricegrid-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithRoles(ctx, claims.Roles)
			ctx = WithAdmin(ctx, claims.Admin)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":  claims.UserID.String(),
					"roles":    strings.Join(claims.Roles, ","),
					"is_admin": claims.Admin,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
