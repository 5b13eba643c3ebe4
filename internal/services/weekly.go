package services

import (
	"context"
	"fmt"
	"time"

	"moodring/internal/store"
)

// TopMood is a modal emotion with its frequency.
type TopMood struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// WeeklySummary covers the current Monday-aligned calendar week. It is not
// the rolling "week" period of AveragesForPeriod; clients depend on both
// windows separately.
type WeeklySummary struct {
	WeeklyCheckinsCount int            `json:"weeklyCheckinsCount"`
	WeeklyTopMood       *TopMood       `json:"weeklyTopMood"`
	AverageMoodForWeek  PeriodAverages `json:"averageMoodForWeek"`
}

// WeeklySummary aggregates the window from Monday 00:00 of now's week up to
// but excluding the following Monday 00:00.
func (s *AnalyticsService) WeeklySummary(ctx context.Context, userID string, now time.Time) (*WeeklySummary, error) {
	start := calendarWeekStart(now)
	end := start.AddDate(0, 0, 7)

	list, err := s.checkins.ListForUser(ctx, userID, store.CheckInFilter{Start: &start, End: &end})
	if err != nil {
		return nil, fmt.Errorf("aggregating calendar week: %w", err)
	}

	out := &WeeklySummary{
		WeeklyCheckinsCount: len(list),
		AverageMoodForWeek:  aggregate(list),
	}
	if name, count := topEmotion(list); count > 0 {
		out.WeeklyTopMood = &TopMood{Name: name, Count: count}
	}
	return out, nil
}

// calendarWeekStart returns Monday 00:00 of now's week in now's location.
// Sunday counts as the seventh day of the running week, not the first of
// the next one.
func calendarWeekStart(now time.Time) time.Time {
	daysSinceMonday := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		daysSinceMonday = 6
	}
	monday := now.AddDate(0, 0, -daysSinceMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
}
