package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"moodring/internal/apperror"
	"moodring/internal/store"
)

type AdminHandler struct {
	users    store.UserStore
	checkins store.CheckInStore
	logger   *zap.Logger
}

func NewAdminHandler(users store.UserStore, checkins store.CheckInStore, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, checkins: checkins, logger: logger}
}

type adminOverview struct {
	TotalUsers          int `json:"total_users"`
	TotalCheckins       int `json:"total_checkins"`
	CheckinsThisWeek    int `json:"checkins_this_week"`
	ActiveUsersThisWeek int `json:"active_users_this_week"`
}

// Overview godoc
// @Summary Get admin overview
// @Description Returns operator statistics (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} adminOverview
// @Failure 403 {object} map[string]string
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), currentUserID(r))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	if !u.IsAdmin {
		writeError(h.logger, w, apperror.Forbidden("admin access required"))
		return
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	var out adminOverview
	if out.TotalUsers, err = h.users.Count(r.Context()); err != nil {
		writeError(h.logger, w, err)
		return
	}
	if out.TotalCheckins, err = h.checkins.Count(r.Context()); err != nil {
		writeError(h.logger, w, err)
		return
	}
	if out.CheckinsThisWeek, err = h.checkins.CountSince(r.Context(), weekAgo); err != nil {
		writeError(h.logger, w, err)
		return
	}
	if out.ActiveUsersThisWeek, err = h.checkins.CountActiveUsersSince(r.Context(), weekAgo); err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
