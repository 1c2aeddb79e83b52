package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wayline/fleet/internal/auth/service"
	"github.com/wayline/fleet/pkg/httpx"
)

type LoginHandler struct {
	Credentials   *service.CredentialValidator
	Sessions      *service.SessionManager
	RefreshTTL    time.Duration
	SecureCookies bool
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

// ServeHTTP handles credential login.
//
//	@Summary		Log in with email and password
//	@Description	Validates credentials and starts a session. The refresh token is
//	@Description	returned in the body and also set as an httpOnly cookie scoped to
//	@Description	the auth endpoints. Accounts with TOTP enrolled must supply otp_code.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"credentials"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid credentials or missing/invalid one-time code"
//	@Failure		403		{object}	httpx.ErrorBody	"Account deactivated"
//	@Failure		423		{object}	httpx.ErrorBody	"Account temporarily locked"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body.")
		return
	}

	ip := httpx.IPKeyExtractor(r)

	user, err := h.Credentials.Validate(r.Context(), req.Email, req.Password, ip)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	pair, err := h.Sessions.Login(r.Context(), user, ip, req.OTPCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setRefreshCookie(w, pair.RefreshToken, h.RefreshTTL, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
