package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/wayline/fleet/internal/auth/service"
	"github.com/wayline/fleet/pkg/httpx"
	"github.com/wayline/fleet/pkg/slogx"
)

// UserResponse is the public shape of an account.
type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	Provider      string     `json:"provider"`
	EmailVerified bool       `json:"email_verified"`
	TOTPEnabled   bool       `json:"totp_enabled"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// writeServiceError maps service-layer errors onto the fixed status codes the
// API promises. Anything unexpected is logged and surfaced as an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var locked *service.AccountLockedError

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized,
			"invalid_credentials", "Invalid email or password.")
	case errors.As(err, &locked):
		httpx.WriteError(w, http.StatusLocked, "account_locked", locked.Error())
	case errors.Is(err, service.ErrAccountInactive):
		httpx.WriteError(w, http.StatusForbidden,
			"account_inactive", "This account has been deactivated.")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict,
			"email_taken", "An account with this email already exists.")
	case errors.Is(err, service.ErrWeakPassword):
		httpx.WriteError(w, http.StatusBadRequest,
			"weak_password", "Password must be at least 8 characters.")
	case errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrSessionCompromised):
		// Both cases mean the same thing to the client: log in again.
		httpx.WriteError(w, http.StatusUnauthorized,
			"session_invalid", "Session is no longer valid. Please log in again.")
	case errors.Is(err, service.ErrOTPRequired):
		httpx.WriteError(w, http.StatusUnauthorized,
			"otp_required", "A one-time code is required to complete login.")
	case errors.Is(err, service.ErrOTPInvalid):
		httpx.WriteError(w, http.StatusUnauthorized,
			"otp_invalid", "The one-time code is invalid.")
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error",
			"path", r.URL.Path, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "Something went wrong.")
	}
}
