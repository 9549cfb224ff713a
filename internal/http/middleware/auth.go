package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/http/response"
	"github.com/localserve/localserve-api/internal/platform/auth"
	"github.com/localserve/localserve-api/pkg/logger"
)

type ctxKey string

const ctxClaims ctxKey = "claims"

// Authenticator verifies bearer tokens and attaches the caller's identity
// to the request context.
type Authenticator struct {
	issuer *auth.TokenIssuer
}

func NewAuthenticator(issuer *auth.TokenIssuer) *Authenticator {
	return &Authenticator{issuer: issuer}
}

func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			response.Fail(w, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}

		claims, err := a.issuer.Parse(strings.TrimPrefix(authz, "Bearer "))
		if err != nil {
			response.Error(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxClaims, claims)
		ctx = context.WithValue(ctx, logger.AccountIDKey, claims.Sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a route on the admin role. It must run after
// RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := Claims(r)
		if claims == nil || claims.Role != domain.RoleAdmin {
			response.Fail(w, http.StatusForbidden, "admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(ctxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}
