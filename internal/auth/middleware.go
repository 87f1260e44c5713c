package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pixelpalette/backend/internal/api"
)

type contextKey string

const UserClaimsKey contextKey = "user_claims"

// Middleware rejects requests without a valid bearer token.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, ok := claimsContext(svc, r)
			if !ok {
				api.HandleError(w, api.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalMiddleware attaches claims when a valid bearer token is present but
// lets anonymous requests through. The generation route accepts both: the
// one free anonymous render is decided downstream by the generation gate.
func OptionalMiddleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ctx, ok := claimsContext(svc, r); ok {
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// claimsContext validates the bearer token and returns a context carrying
// both the raw claims and the parsed account ID.
func claimsContext(svc *Service, r *http.Request) (context.Context, bool) {
	claims, ok := bearerClaims(svc, r)
	if !ok {
		return nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, false
	}
	ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
	return api.WithAccountID(ctx, id), true
}

func bearerClaims(svc *Service, r *http.Request) (*AccessClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, false
	}

	claims, err := svc.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

func GetUserClaims(ctx context.Context) *AccessClaims {
	claims, _ := ctx.Value(UserClaimsKey).(*AccessClaims)
	return claims
}
