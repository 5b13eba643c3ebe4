package services

import (
	"context"
	"fmt"
	"time"

	"moodring/internal/store"
)

// StreakService computes consecutive-day check-in streaks.
type StreakService struct {
	checkins store.CheckInStore
}

func NewStreakService(checkins store.CheckInStore) *StreakService {
	return &StreakService{checkins: checkins}
}

// CurrentStreak returns the user's streak of consecutive calendar days with
// at least one check-in, ending today or yesterday relative to now.
func (s *StreakService) CurrentStreak(ctx context.Context, userID string, now time.Time) (int, error) {
	ts, err := s.checkins.Timestamps(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("computing streak: %w", err)
	}
	return streakFromTimestamps(ts, now), nil
}

// streakFromTimestamps is the pure streak walk. Calendar days are taken in
// now's location; several check-ins on one day count once. A streak is
// alive only if its most recent day is today or yesterday.
func streakFromTimestamps(ts []time.Time, now time.Time) int {
	if len(ts) == 0 {
		return 0
	}

	loc := now.Location()
	days := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		days[t.In(loc).Format("2006-01-02")] = struct{}{}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	cursor := today
	if _, ok := days[dayKey(cursor)]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
		if _, ok := days[dayKey(cursor)]; !ok {
			return 0 // most recent check-in is older than yesterday
		}
	}

	streak := 0
	for {
		if _, ok := days[dayKey(cursor)]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }
