package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"moodring/internal/apperror"
	"moodring/internal/models"
	"moodring/internal/store"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// FeedService assembles the social feed and guards single check-in reads.
type FeedService struct {
	checkins   store.CheckInStore
	visibility *VisibilityService
	enc        *EncryptionService
	logger     *zap.Logger
}

func NewFeedService(checkins store.CheckInStore, visibility *VisibilityService, enc *EncryptionService, logger *zap.Logger) *FeedService {
	return &FeedService{checkins: checkins, visibility: visibility, enc: enc, logger: logger}
}

// GetFeed returns one page of public check-ins visible to the viewer.
// Pagination is offset-based; concurrent inserts can shift page boundaries
// between requests, which is accepted for this feed.
func (s *FeedService) GetFeed(ctx context.Context, viewerID, sortBy string, skip, limit int) ([]models.CheckIn, error) {
	if sortBy != store.SortTimestamp && sortBy != store.SortHottest {
		return nil, apperror.InvalidArgument("sort", `Invalid sort method. Use "timestamp" or "hottest".`)
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	excluded, err := s.visibility.ResolveExcluded(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	// Deliver the exclusion set in a fixed order; map iteration order must
	// not leak into the SQL and change query plans between identical calls.
	ids := make([]string, 0, len(excluded))
	for id := range excluded {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	page, err := s.checkins.ListPublic(ctx, ids, sortBy, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("assembling feed: %w", err)
	}

	for i := range page {
		if page[i].UserID != viewerID && !page[i].LocationShared {
			page[i].RedactLocation()
		}
	}
	if err := s.enc.DecryptCheckIns(page); err != nil {
		return nil, fmt.Errorf("decrypting feed page: %w", err)
	}
	return page, nil
}

// GetDetail returns one check-in if the requester may see it.
// public is visible to anyone; private only to its owner. friends also
// resolves to owner-only: there is no friend graph, only block lists.
func (s *FeedService) GetDetail(ctx context.Context, checkInID, requestingUserID string) (*models.CheckIn, error) {
	c, err := s.checkins.GetByID(ctx, checkInID)
	if err != nil {
		return nil, err
	}

	isOwner := requestingUserID != "" && requestingUserID == c.UserID
	if c.Privacy != models.PrivacyPublic && !isOwner {
		return nil, apperror.Forbidden("you do not have permission to view this check-in")
	}

	if !isOwner && !c.LocationShared {
		c.RedactLocation()
	}
	if err := s.enc.DecryptCheckIn(c); err != nil {
		return nil, fmt.Errorf("decrypting check-in %s: %w", checkInID, err)
	}
	return c, nil
}

// LikeCheckIn records a like by userID on a check-in the user can see.
func (s *FeedService) LikeCheckIn(ctx context.Context, checkInID, userID string) error {
	if _, err := s.GetDetail(ctx, checkInID, userID); err != nil {
		return err
	}
	if err := s.checkins.Like(ctx, checkInID, userID); err != nil {
		return fmt.Errorf("liking check-in %s: %w", checkInID, err)
	}
	return nil
}

// UnlikeCheckIn removes a previously recorded like. Removing a like that
// was never recorded is a no-op.
func (s *FeedService) UnlikeCheckIn(ctx context.Context, checkInID, userID string) error {
	if _, err := s.GetDetail(ctx, checkInID, userID); err != nil {
		return err
	}
	if err := s.checkins.Unlike(ctx, checkInID, userID); err != nil {
		return fmt.Errorf("unliking check-in %s: %w", checkInID, err)
	}
	return nil
}
