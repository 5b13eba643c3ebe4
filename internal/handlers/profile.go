package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"moodring/internal/apperror"
	"moodring/internal/services"
)

type ProfileHandler struct {
	profile   *services.ProfileService
	analytics *services.AnalyticsService
	logger    *zap.Logger
}

func NewProfileHandler(profile *services.ProfileService, analytics *services.AnalyticsService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profile: profile, analytics: analytics, logger: logger}
}

// referenceTime resolves the caller's "today". An optional local_date
// query param (YYYY-MM-DD) pins it for clients in other timezones and for
// reproducible requests; otherwise the server clock is used.
func referenceTime(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("local_date")
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperror.InvalidArgument("local_date", "invalid local_date format; expected YYYY-MM-DD")
	}
	return t, nil
}

// Summary godoc
// @Summary Get profile summary
// @Description Returns streak, top mood, weekly summary and recent check-ins
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param local_date query string false "reference date YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /profile/summary [get]
func (h *ProfileHandler) Summary(w http.ResponseWriter, r *http.Request) {
	now, err := referenceTime(r)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	summary, err := h.profile.Summary(r.Context(), currentUserID(r), now)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

type dateRangeDTO struct {
	Start *time.Time `json:"start"`
	End   time.Time  `json:"end"`
}

type analyticsDTO struct {
	Period               string                  `json:"period"`
	DateRange            dateRangeDTO            `json:"dateRange"`
	AverageMoodForPeriod services.PeriodAverages `json:"averageMoodForPeriod"`
}

// Analytics godoc
// @Summary Get mood averages for a period
// @Description Aggregates emotion attributes over week, month, 3months, year or all
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param period query string true "week|month|3months|year|all"
// @Param local_date query string false "reference date YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /profile/analytics [get]
func (h *ProfileHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	now, err := referenceTime(r)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	report, err := h.analytics.AveragesForPeriod(r.Context(), currentUserID(r), r.URL.Query().Get("period"), now)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeData(w, http.StatusOK, analyticsDTO{
		Period:               report.Period,
		DateRange:            dateRangeDTO{Start: report.Start, End: report.End},
		AverageMoodForPeriod: report.Averages,
	})
}
