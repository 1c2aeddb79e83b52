package http

import (
	"net/http"

	"github.com/wayline/fleet/internal/auth/store"
	"github.com/wayline/fleet/pkg/httpx"
	"github.com/wayline/fleet/pkg/slogx"
)

type MeHandler struct {
	Store store.Store
}

// ServeHTTP returns the authenticated user's account.
//
//	@Summary		Who am I
//	@Description	Returns the account behind the presented access token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Failure		500	{object}	httpx.ErrorBody	"Internal server error"
//	@Router			/v1/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		writeUnauthorized(w, "missing bearer token")
		return
	}

	user, err := h.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to load user", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Something went wrong.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Role:          user.Role,
		Provider:      string(user.Provider),
		EmailVerified: user.EmailVerified,
		TOTPEnabled:   user.TOTPEnabled(),
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
	})
}
