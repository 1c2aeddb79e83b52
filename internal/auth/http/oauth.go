package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wayline/fleet/internal/auth/domain"
	"github.com/wayline/fleet/internal/auth/service"
	"github.com/wayline/fleet/pkg/httpx"
)

// OAuthCallbackHandler completes a provider login. The gateway in front of
// this service performs the authorization-code exchange and identity
// verification with the provider; what arrives here is the verified profile.
type OAuthCallbackHandler struct {
	Sessions      *service.SessionManager
	RefreshTTL    time.Duration
	SecureCookies bool
}

type OAuthCallbackRequest struct {
	Provider   string `json:"provider"`
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
}

// ServeHTTP handles the provider upsert-login.
//
//	@Summary		Complete an OAuth login
//	@Description	Logs a provider-verified identity in, creating the account on first
//	@Description	contact or linking the provider to an existing account with the same email.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		OAuthCallbackRequest	true	"verified provider profile"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		401		{object}	httpx.ErrorBody	"Identity rejected"
//	@Failure		403		{object}	httpx.ErrorBody	"Account deactivated"
//	@Router			/v1/auth/oauth/callback [post].
func (h *OAuthCallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req OAuthCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body.")
		return
	}
	if req.Provider == "" || req.ExternalID == "" || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
			"provider, external_id and email are required.")
		return
	}

	pair, err := h.Sessions.OAuthLogin(r.Context(), domain.OAuthProfile{
		Provider:   req.Provider,
		ExternalID: req.ExternalID,
		Email:      req.Email,
		Name:       req.Name,
	}, httpx.IPKeyExtractor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setRefreshCookie(w, pair.RefreshToken, h.RefreshTTL, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
