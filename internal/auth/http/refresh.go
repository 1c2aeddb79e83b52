package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wayline/fleet/internal/auth/service"
	"github.com/wayline/fleet/pkg/httpx"
)

type RefreshHandler struct {
	Sessions      *service.SessionManager
	RefreshTTL    time.Duration
	SecureCookies bool
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ServeHTTP rotates a refresh token.
//
//	@Summary		Exchange a refresh token for a new pair
//	@Description	Rotates the refresh token: the presented token is invalidated and a
//	@Description	fresh pair is issued. Presenting a stale or replayed token terminates
//	@Description	the whole session. Token is read from the cookie, falling back to the body.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest	false	"refresh token when not using the cookie"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		401		{object}	httpx.ErrorBody	"Session expired or compromised; log in again"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	// Body is optional when the cookie is present.
	_ = json.NewDecoder(r.Body).Decode(&req)

	token := refreshTokenFromRequest(r, req.RefreshToken)
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Missing refresh token.")
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), token)
	if err != nil {
		clearRefreshCookie(w, h.SecureCookies)
		writeServiceError(w, r, err)
		return
	}

	setRefreshCookie(w, pair.RefreshToken, h.RefreshTTL, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
