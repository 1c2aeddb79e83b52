package http

import (
	"encoding/json"
	"net/http"

	"github.com/wayline/fleet/internal/auth/service"
	"github.com/wayline/fleet/pkg/httpx"
)

type LogoutHandler struct {
	Sessions      *service.SessionManager
	SecureCookies bool
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ServeHTTP ends the authenticated session.
//
//	@Summary		Log out
//	@Description	Terminates the session: the stored refresh hash is cleared and both
//	@Description	the refresh token and the current access token are denylisted.
//	@Description	Idempotent; always succeeds for an authenticated caller.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	LogoutRequest	false	"refresh token when not using the cookie"
//	@Success		204		"Session terminated"
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := httpx.ClaimsFromContext(ctx)
	if claims == nil {
		writeUnauthorized(w, "missing bearer token")
		return
	}

	var req LogoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	refreshToken := refreshTokenFromRequest(r, req.RefreshToken)

	if err := h.Sessions.Logout(ctx, claims.Subject, refreshToken, claims); err != nil {
		writeServiceError(w, r, err)
		return
	}

	clearRefreshCookie(w, h.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}
