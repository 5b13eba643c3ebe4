package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"moodring/internal/apperror"
	"moodring/internal/models"
	"moodring/internal/store"
)

// Analytics periods. "week" is a rolling now-7d window; the Monday-aligned
// calendar week lives in WeeklySummary and is deliberately a different
// window with different semantics.
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	Period3Months = "3months"
	PeriodYear    = "year"
	PeriodAll     = "all"
)

// AttributeAverages holds per-dimension means. nil means no check-in in the
// window carried that dimension; it is never reported as zero.
type AttributeAverages struct {
	Pleasantness *float64 `json:"pleasantness"`
	Intensity    *float64 `json:"intensity"`
	Control      *float64 `json:"control"`
	Clarity      *float64 `json:"clarity"`
}

type PeriodAverages struct {
	AverageAttributes AttributeAverages `json:"averageAttributes"`
	TotalCheckins     int               `json:"totalCheckins"`
	TopEmotion        *string           `json:"topEmotion"`
	TopEmotionCount   int               `json:"topEmotionCount"`
}

// PeriodReport is a PeriodAverages plus the resolved date window.
// Start is nil for the unbounded "all" period.
type PeriodReport struct {
	Period   string
	Start    *time.Time
	End      time.Time
	Averages PeriodAverages
}

// AnalyticsService aggregates a user's check-in time series.
type AnalyticsService struct {
	checkins store.CheckInStore
}

func NewAnalyticsService(checkins store.CheckInStore) *AnalyticsService {
	return &AnalyticsService{checkins: checkins}
}

// AveragesForPeriod aggregates the user's check-ins over the named window
// ending at now. Identical inputs with no intervening writes always yield
// identical output.
func (s *AnalyticsService) AveragesForPeriod(ctx context.Context, userID, period string, now time.Time) (*PeriodReport, error) {
	start, end, err := periodWindow(period, now)
	if err != nil {
		return nil, err
	}

	list, err := s.checkins.ListForUser(ctx, userID, store.CheckInFilter{Start: start, End: &end})
	if err != nil {
		return nil, fmt.Errorf("aggregating period %q: %w", period, err)
	}

	return &PeriodReport{
		Period:   period,
		Start:    start,
		End:      end,
		Averages: aggregate(list),
	}, nil
}

// periodWindow resolves a period name to [start, end). end is the end of
// now's day; starts are midnight-normalized. "week" is rolling (now-7d),
// "month"/"3months"/"year" use calendar arithmetic, "all" has no start.
func periodWindow(period string, now time.Time) (*time.Time, time.Time, error) {
	loc := now.Location()
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999_000_000, loc)

	var start time.Time
	switch period {
	case PeriodWeek:
		start = now.AddDate(0, 0, -7)
	case PeriodMonth:
		start = now.AddDate(0, -1, 0)
	case Period3Months:
		start = now.AddDate(0, -3, 0)
	case PeriodYear:
		start = now.AddDate(-1, 0, 0)
	case PeriodAll:
		return nil, end, nil
	default:
		return nil, time.Time{}, apperror.InvalidArgument("period",
			fmt.Sprintf("invalid period %q; use week, month, 3months, year or all", period))
	}

	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	return &start, end, nil
}

// aggregate computes null-safe attribute means, the total count, and the
// dominant emotion over one window. The input arrives newest-first; when
// two emotions tie on count, the one that reached that count first in this
// order wins, which favours the more recently concentrated emotion.
func aggregate(list []models.CheckIn) PeriodAverages {
	out := PeriodAverages{TotalCheckins: len(list)}

	var sums, counts [4]float64
	for _, c := range list {
		for i, v := range [4]*float64{c.Pleasantness, c.Intensity, c.Control, c.Clarity} {
			if v != nil {
				sums[i] += *v
				counts[i]++
			}
		}
	}
	avgs := [4]**float64{
		&out.AverageAttributes.Pleasantness,
		&out.AverageAttributes.Intensity,
		&out.AverageAttributes.Control,
		&out.AverageAttributes.Clarity,
	}
	for i := range sums {
		if counts[i] > 0 {
			v := round2(sums[i] / counts[i])
			*avgs[i] = &v
		}
	}

	if name, count := topEmotion(list); count > 0 {
		out.TopEmotion = &name
		out.TopEmotionCount = count
	}
	return out
}

// topEmotion returns the modal emotion name and its count, or ("", 0) for
// an empty window.
func topEmotion(list []models.CheckIn) (string, int) {
	counts := make(map[string]int, len(list))
	best, bestCount := "", 0
	for _, c := range list {
		counts[c.EmotionName]++
		if counts[c.EmotionName] > bestCount {
			best, bestCount = c.EmotionName, counts[c.EmotionName]
		}
	}
	return best, bestCount
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
