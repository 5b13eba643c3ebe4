package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"moodring/internal/apperror"
	"moodring/internal/models"
	"moodring/internal/services"
	"moodring/internal/store"
)

type CheckInHandler struct {
	checkins *services.CheckInService
	logger   *zap.Logger
}

func NewCheckInHandler(checkins *services.CheckInService, logger *zap.Logger) *CheckInHandler {
	return &CheckInHandler{checkins: checkins, logger: logger}
}

type checkInRequest struct {
	Emotion struct {
		Name       string                    `json:"name"`
		Attributes *models.EmotionAttributes `json:"attributes"`
	} `json:"emotion"`
	Reason     *string         `json:"reason"`
	People     []string        `json:"people"`
	Activities []string        `json:"activities"`
	Location   json.RawMessage `json:"location"`
	Privacy    string          `json:"privacy"`
	Timestamp  *time.Time      `json:"timestamp"`
}

func (req checkInRequest) toInput() (services.CheckInInput, error) {
	loc, err := parseLocation(req.Location)
	if err != nil {
		return services.CheckInInput{}, err
	}
	in := services.CheckInInput{
		EmotionName: req.Emotion.Name,
		Reason:      req.Reason,
		People:      req.People,
		Activities:  req.Activities,
		Location:    loc,
		Privacy:     req.Privacy,
		Timestamp:   req.Timestamp,
	}
	if req.Emotion.Attributes != nil {
		in.Attributes = *req.Emotion.Attributes
	}
	return in, nil
}

// parseLocation normalizes the location payload, which clients send either
// as a bare place name or as a {name, coordinates, isShared} object.
func parseLocation(raw json.RawMessage) (*services.LocationInput, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return &services.LocationInput{Name: &name}, nil
	}
	var obj struct {
		Name        *string   `json:"name"`
		Coordinates []float64 `json:"coordinates"`
		IsShared    bool      `json:"isShared"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, apperror.InvalidArgument("location", "location must be a name or a location object")
	}
	return &services.LocationInput{Name: obj.Name, Coordinates: obj.Coordinates, IsShared: obj.IsShared}, nil
}

func (h *CheckInHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, apperror.InvalidArgument("body", "invalid body"))
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	c, err := h.checkins.Create(r.Context(), currentUserID(r), in)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ToCheckInDTO(*c, true))
}

func (h *CheckInHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		invalidID(w, "check-in ID")
		return
	}
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, apperror.InvalidArgument("body", "invalid body"))
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	c, err := h.checkins.Update(r.Context(), id, currentUserID(r), in)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToCheckInDTO(*c, true))
}

func (h *CheckInHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		invalidID(w, "check-in ID")
		return
	}
	if err := h.checkins.Delete(r.Context(), id, currentUserID(r)); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type paginationDTO struct {
	Limit   int  `json:"limit"`
	Skip    int  `json:"skip"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// ListForUser pages through one user's check-ins. Non-owner callers only
// ever receive public entries.
func (h *CheckInHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	// The path segment is the owning user's id; it shares the {id}
	// placeholder with the single-check-in routes.
	ownerID := chi.URLParam(r, "id")
	if !validID(ownerID) {
		invalidID(w, "user ID")
		return
	}

	q := r.URL.Query()
	f := store.CheckInFilter{
		Privacy: q.Get("privacy"),
		Emotion: q.Get("emotion"),
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Skip, _ = strconv.Atoi(q.Get("skip"))

	if s := q.Get("startDate"); s != "" {
		start, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(h.logger, w, apperror.InvalidArgument("startDate", "invalid startDate format; expected YYYY-MM-DD"))
			return
		}
		f.Start = &start
	}
	if s := q.Get("endDate"); s != "" {
		end, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(h.logger, w, apperror.InvalidArgument("endDate", "invalid endDate format; expected YYYY-MM-DD"))
			return
		}
		// endDate is inclusive of the named day
		end = end.AddDate(0, 0, 1)
		f.End = &end
	}
	includeLocation := q.Get("includeLocation") != "false"

	list, total, err := h.checkins.ListForUser(r.Context(), ownerID, currentUserID(r), f)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	limit := f.Limit
	if limit <= 0 {
		limit = services.DefaultFeedLimit
	}
	if limit > services.MaxFeedLimit {
		limit = services.MaxFeedLimit
	}
	skip := f.Skip
	if skip < 0 {
		skip = 0
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"checkIns": toCheckInDTOs(list, includeLocation),
		"pagination": paginationDTO{
			Limit:   limit,
			Skip:    skip,
			Total:   total,
			HasMore: len(list) == limit,
		},
	})
}
