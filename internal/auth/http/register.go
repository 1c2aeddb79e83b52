package http

import (
	"encoding/json"
	"net/http"

	"github.com/wayline/fleet/internal/auth/service"
	"github.com/wayline/fleet/pkg/httpx"
)

type RegisterHandler struct {
	Accounts *service.AccountService
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP handles local account registration.
//
//	@Summary		Register a new account
//	@Description	Creates a local account with an email and password.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"email and password"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Malformed request or weak password"
//	@Failure		409		{object}	httpx.ErrorBody	"Email already registered"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body.")
		return
	}

	user, err := h.Accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Role:          user.Role,
		Provider:      string(user.Provider),
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	})
}
