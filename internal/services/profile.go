package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"moodring/internal/models"
	"moodring/internal/store"
)

// EmotionSnapshot is an emotion name with representative attributes and the
// number of times it was recorded.
type EmotionSnapshot struct {
	Name       string                   `json:"name"`
	Attributes models.EmotionAttributes `json:"attributes"`
	Count      int                      `json:"count"`
}

// RecentCheckIn is the slim projection used in profile summaries.
type RecentCheckIn struct {
	Emotion    string                   `json:"emotion"`
	Attributes models.EmotionAttributes `json:"attributes"`
	Timestamp  time.Time                `json:"timestamp"`
}

type ProfileSummary struct {
	User           *models.User    `json:"user"`
	TotalCheckins  int             `json:"totalCheckins"`
	TopMood        *EmotionSnapshot `json:"topMood"`
	CheckinStreak  int             `json:"checkinStreak"`
	RecentCheckins []RecentCheckIn `json:"recentCheckins"`
	WeeklySummary  *WeeklySummary  `json:"weeklySummary"`
}

// ProfileService composes the read-only profile summary from the other
// services.
type ProfileService struct {
	users     store.UserStore
	checkins  store.CheckInStore
	analytics *AnalyticsService
	streaks   *StreakService
	logger    *zap.Logger
}

func NewProfileService(users store.UserStore, checkins store.CheckInStore, analytics *AnalyticsService, streaks *StreakService, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: users, checkins: checkins, analytics: analytics, streaks: streaks, logger: logger}
}

// Summary gathers the profile sub-computations concurrently. Only a missing
// user fails the call; every other branch degrades to its empty value so a
// broken aggregation pipeline never takes the whole summary down.
func (s *ProfileService) Summary(ctx context.Context, userID string, now time.Time) (*ProfileSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ProfileSummary{
		User:           user,
		RecentCheckins: []RecentCheckIn{},
		WeeklySummary:  &WeeklySummary{},
	}

	var wg sync.WaitGroup
	branch := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				s.logger.Warn("profile summary branch degraded to default",
					zap.String("branch", name),
					zap.String("user_id", userID),
					zap.Error(err))
			}
		}()
	}

	branch("total_checkins", func() error {
		n, err := s.checkins.CountForUser(ctx, userID, store.CheckInFilter{})
		if err != nil {
			return err
		}
		out.TotalCheckins = n
		return nil
	})

	branch("top_mood", func() error {
		list, err := s.checkins.ListForUser(ctx, userID, store.CheckInFilter{})
		if err != nil {
			return err
		}
		out.TopMood = allTimeTopMood(list)
		return nil
	})

	branch("streak", func() error {
		n, err := s.streaks.CurrentStreak(ctx, userID, now)
		if err != nil {
			return err
		}
		out.CheckinStreak = n
		return nil
	})

	branch("recent_checkins", func() error {
		list, err := s.checkins.ListForUser(ctx, userID, store.CheckInFilter{Limit: 3})
		if err != nil {
			return err
		}
		recent := make([]RecentCheckIn, 0, len(list))
		for _, c := range list {
			recent = append(recent, RecentCheckIn{
				Emotion:    c.EmotionName,
				Attributes: c.EmotionAttributes,
				Timestamp:  c.OccurredAt,
			})
		}
		out.RecentCheckins = recent
		return nil
	})

	branch("weekly_summary", func() error {
		weekly, err := s.analytics.WeeklySummary(ctx, userID, now)
		if err != nil {
			return err
		}
		out.WeeklySummary = weekly
		return nil
	})

	wg.Wait()
	return out, nil
}

// allTimeTopMood returns the all-time modal emotion. The representative
// attributes come from the most recent check-in carrying that name, which
// is the first occurrence in the newest-first input.
func allTimeTopMood(list []models.CheckIn) *EmotionSnapshot {
	name, count := topEmotion(list)
	if count == 0 {
		return nil
	}
	for _, c := range list {
		if c.EmotionName == name {
			return &EmotionSnapshot{Name: name, Attributes: c.EmotionAttributes, Count: count}
		}
	}
	return nil
}
