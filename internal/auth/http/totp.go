package http

import (
	"encoding/json"
	"net/http"

	"github.com/wayline/fleet/internal/auth/service"
	"github.com/wayline/fleet/pkg/httpx"
)

type TOTPHandler struct {
	Accounts *service.AccountService
}

type TOTPProvisionResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

type TOTPEnableRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

type TOTPDisableRequest struct {
	Code string `json:"code"`
}

// HandleProvision godoc
//
//	@Summary		Provision a TOTP secret
//	@Description	Generates a fresh TOTP secret and provisioning URL. Nothing is stored
//	@Description	until the secret is confirmed through the enable endpoint.
//	@Tags			TOTP
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	TOTPProvisionResponse
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/v1/auth/totp/provision [post].
func (h *TOTPHandler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		writeUnauthorized(w, "missing bearer token")
		return
	}

	secret, url, err := h.Accounts.ProvisionTOTP(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TOTPProvisionResponse{
		Secret:     secret,
		OTPAuthURL: url,
	})
}

// HandleEnable godoc
//
//	@Summary		Enable TOTP
//	@Description	Confirms enrollment by proving possession of the provisioned secret.
//	@Description	Subsequent logins require a one-time code.
//	@Tags			TOTP
//	@Security		BearerAuth
//	@Accept			json
//	@Success		204	"TOTP enabled"
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid code or access token"
//	@Router			/v1/auth/totp/enable [post].
func (h *TOTPHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		writeUnauthorized(w, "missing bearer token")
		return
	}

	var req TOTPEnableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Secret == "" || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "secret and code are required.")
		return
	}

	if err := h.Accounts.EnableTOTP(ctx, userID, req.Secret, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable godoc
//
//	@Summary		Disable TOTP
//	@Description	Removes the TOTP factor. A current one-time code is required.
//	@Tags			TOTP
//	@Security		BearerAuth
//	@Accept			json
//	@Success		204	"TOTP disabled"
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid code or access token"
//	@Router			/v1/auth/totp/disable [post].
func (h *TOTPHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		writeUnauthorized(w, "missing bearer token")
		return
	}

	var req TOTPDisableRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.Accounts.DisableTOTP(ctx, userID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
