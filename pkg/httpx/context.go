package httpx

import (
	"context"

	"github.com/wayline/fleet/pkg/jwtx"
)

type ctxKey string

const (
	ctxKeyUserID ctxKey = "user_id"
	ctxKeyClaims ctxKey = "claims"
)

// ContextWithAuth records the verified access claims on the context.
func ContextWithAuth(ctx context.Context, claims *jwtx.AccessClaims) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, claims.Subject)
	return context.WithValue(ctx, ctxKeyClaims, claims)
}

// UserIDFromContext returns the authenticated user id, or "" when the request
// did not pass through the auth middleware.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromContext returns the verified access claims, or nil.
func ClaimsFromContext(ctx context.Context) *jwtx.AccessClaims {
	if v, ok := ctx.Value(ctxKeyClaims).(*jwtx.AccessClaims); ok {
		return v
	}
	return nil
}
