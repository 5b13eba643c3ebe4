package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"moodring/internal/services"
	"moodring/internal/store"
)

type FeedHandler struct {
	feed   *services.FeedService
	logger *zap.Logger
}

func NewFeedHandler(feed *services.FeedService, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{feed: feed, logger: logger}
}

// GetFeed godoc
// @Summary Get the social feed
// @Description Returns a page of public check-ins visible to the caller
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param sort query string false "timestamp or hottest" default(timestamp)
// @Param skip query int false "offset"
// @Param limit query int false "page size (1-100)"
// @Success 200 {array} CheckInDTO
// @Failure 400 {object} map[string]string
// @Router /feed [get]
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	viewerID := currentUserID(r)
	q := r.URL.Query()

	sortBy := q.Get("sort")
	if sortBy == "" {
		sortBy = store.SortTimestamp
	}
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	page, err := h.feed.GetFeed(r.Context(), viewerID, sortBy, skip, limit)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckInDTOs(page, true))
}

// GetDetail returns a single check-in, subject to its privacy level.
// The requester is the authenticated user when a token is present, else the
// requestingUserId query parameter.
func (h *FeedHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		invalidID(w, "check-in ID")
		return
	}
	requester := currentUserID(r)
	if requester == "" {
		requester = r.URL.Query().Get("requestingUserId")
		if requester != "" && !validID(requester) {
			invalidID(w, "requesting user ID")
			return
		}
	}

	c, err := h.feed.GetDetail(r.Context(), id, requester)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToCheckInDTO(*c, true))
}

func (h *FeedHandler) Like(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		invalidID(w, "check-in ID")
		return
	}
	if err := h.feed.LikeCheckIn(r.Context(), id, currentUserID(r)); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FeedHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		invalidID(w, "check-in ID")
		return
	}
	if err := h.feed.UnlikeCheckIn(r.Context(), id, currentUserID(r)); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
