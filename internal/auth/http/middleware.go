package http

import (
	"net/http"
	"strings"

	"github.com/wayline/fleet/internal/auth/service"
	"github.com/wayline/fleet/pkg/httpx"
	"github.com/wayline/fleet/pkg/jwtx"
	"github.com/wayline/fleet/pkg/slogx"
)

// AuthnMiddleware verifies the bearer access token and runs the soft session
// check (jti revocation, account still active) before letting the request
// through. Claims land on the request context for handlers downstream.
func AuthnMiddleware(issuer *jwtx.Issuer, sessions *service.SessionManager) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			claims, err := issuer.VerifyAccess(token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			user, err := sessions.ValidateAccessToken(ctx, claims)
			if err != nil {
				slogx.FromContext(ctx).Error("access token validation failed", "err", err)
				httpx.WriteError(w, http.StatusInternalServerError,
					"server_error", "Something went wrong.")
				return
			}
			if user == nil {
				writeUnauthorized(w, "token is no longer valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(httpx.ContextWithAuth(ctx, claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", description)
}
