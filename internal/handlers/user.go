package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"moodring/internal/apperror"
	"moodring/internal/store"
)

type UserHandler struct {
	users  store.UserStore
	logger *zap.Logger
}

func NewUserHandler(users store.UserStore, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// GetMe returns the current user's profile.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), currentUserID(r))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(*u))
}

// Block adds a user to the caller's block list. Blocking is one-way in
// storage; feed visibility treats it as mutual. There is no unblock.
func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		writeError(h.logger, w, apperror.InvalidArgument("userId", "userId is required"))
		return
	}
	if !validID(body.UserID) {
		invalidID(w, "user ID")
		return
	}

	viewerID := currentUserID(r)
	if body.UserID == viewerID {
		writeError(h.logger, w, apperror.InvalidArgument("userId", "you cannot block yourself"))
		return
	}
	if _, err := h.users.GetByID(r.Context(), body.UserID); err != nil {
		writeError(h.logger, w, err)
		return
	}

	if err := h.users.Block(r.Context(), viewerID, body.UserID); err != nil {
		writeError(h.logger, w, err)
		return
	}
	h.logger.Info("user blocked", zap.String("user_id", viewerID), zap.String("blocked_id", body.UserID))
	w.WriteHeader(http.StatusNoContent)
}
