package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"moodring/internal/apperror"
	"moodring/internal/models"
	"moodring/internal/store"
)

const MaxReasonLength = 500

// LocationInput is the normalized tagged-variant location. The client may
// send a bare name, a full geo object, or nothing; the handler normalizes
// to this shape before it reaches the service.
type LocationInput struct {
	Name        *string
	Coordinates []float64 // [lon, lat] when present
	IsShared    bool
}

// CheckInInput carries the owner-mutable fields of a check-in.
type CheckInInput struct {
	EmotionName string
	Attributes  models.EmotionAttributes
	Reason      *string
	People      []string
	Activities  []string
	Location    *LocationInput
	Privacy     string
	Timestamp   *time.Time // creation only; immutable afterwards
}

// CheckInService owns the write path and the per-user listing read path.
type CheckInService struct {
	checkins store.CheckInStore
	enc      *EncryptionService
	logger   *zap.Logger
}

func NewCheckInService(checkins store.CheckInStore, enc *EncryptionService, logger *zap.Logger) *CheckInService {
	return &CheckInService{checkins: checkins, enc: enc, logger: logger}
}

func (s *CheckInService) Create(ctx context.Context, userID string, in CheckInInput) (*models.CheckIn, error) {
	c := &models.CheckIn{UserID: userID}
	if err := applyInput(c, in); err != nil {
		return nil, err
	}
	if in.Timestamp != nil {
		c.OccurredAt = *in.Timestamp
	}

	plainReason := c.Reason
	if err := s.enc.EncryptCheckIn(c); err != nil {
		return nil, fmt.Errorf("encrypting check-in: %w", err)
	}
	if err := s.checkins.Create(ctx, c); err != nil {
		return nil, err
	}
	c.Reason = plainReason

	s.logger.Info("check-in created",
		zap.String("id", c.ID),
		zap.String("user_id", userID),
		zap.String("emotion", c.EmotionName))
	return c, nil
}

// Update modifies an owner's check-in. Only the owner may mutate, and only
// the mutable subset: emotion, reason, people, activities, location,
// privacy. The content timestamp never changes.
func (s *CheckInService) Update(ctx context.Context, checkInID, userID string, in CheckInInput) (*models.CheckIn, error) {
	c, err := s.checkins.GetByID(ctx, checkInID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, apperror.Forbidden("only the owner can modify a check-in")
	}

	if err := applyInput(c, in); err != nil {
		return nil, err
	}

	plainReason := c.Reason
	if err := s.enc.EncryptCheckIn(c); err != nil {
		return nil, fmt.Errorf("encrypting check-in: %w", err)
	}
	if err := s.checkins.Update(ctx, c); err != nil {
		return nil, err
	}
	c.Reason = plainReason

	s.logger.Info("check-in updated", zap.String("id", c.ID), zap.String("user_id", userID))
	return c, nil
}

func (s *CheckInService) Delete(ctx context.Context, checkInID, userID string) error {
	c, err := s.checkins.GetByID(ctx, checkInID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return apperror.Forbidden("only the owner can delete a check-in")
	}
	if err := s.checkins.Delete(ctx, checkInID); err != nil {
		return err
	}
	s.logger.Info("check-in deleted", zap.String("id", checkInID), zap.String("user_id", userID))
	return nil
}

// ListForUser pages through ownerID's check-ins as seen by viewerID.
// Non-owners only ever see public check-ins, with unshared locations
// redacted; the owner may additionally filter by privacy level.
func (s *CheckInService) ListForUser(ctx context.Context, ownerID, viewerID string, f store.CheckInFilter) ([]models.CheckIn, int, error) {
	if f.Privacy != "" && !models.ValidPrivacy(f.Privacy) {
		return nil, 0, apperror.InvalidArgument("privacy", "invalid privacy level; use private, friends or public")
	}
	isOwner := viewerID == ownerID
	if !isOwner {
		f.Privacy = models.PrivacyPublic
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultFeedLimit
	}
	if f.Limit > MaxFeedLimit {
		f.Limit = MaxFeedLimit
	}

	list, err := s.checkins.ListForUser(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.checkins.CountForUser(ctx, ownerID, store.CheckInFilter{
		Privacy: f.Privacy, Emotion: f.Emotion, Start: f.Start, End: f.End,
	})
	if err != nil {
		return nil, 0, err
	}

	if !isOwner {
		for i := range list {
			if !list[i].LocationShared {
				list[i].RedactLocation()
			}
		}
	}
	if err := s.enc.DecryptCheckIns(list); err != nil {
		return nil, 0, fmt.Errorf("decrypting check-ins: %w", err)
	}
	return list, total, nil
}

// applyInput validates and copies the mutable fields onto c.
func applyInput(c *models.CheckIn, in CheckInInput) error {
	name := strings.ToLower(strings.TrimSpace(in.EmotionName))
	if name == "" {
		return apperror.InvalidArgument("emotion.name", "emotion name is required")
	}
	if in.Reason != nil && len(*in.Reason) > MaxReasonLength {
		return apperror.InvalidArgument("reason",
			fmt.Sprintf("reason must be %d characters or less", MaxReasonLength))
	}
	privacy := in.Privacy
	if privacy == "" {
		privacy = models.PrivacyPrivate
	}
	if !models.ValidPrivacy(privacy) {
		return apperror.InvalidArgument("privacy", "invalid privacy level; use private, friends or public")
	}

	c.EmotionName = name
	c.EmotionAttributes = in.Attributes
	c.Reason = in.Reason
	c.People = filterBlank(in.People)
	c.Activities = filterBlank(in.Activities)
	c.Privacy = privacy

	c.LocationName = nil
	c.LocationLon = nil
	c.LocationLat = nil
	c.LocationShared = false
	if in.Location != nil {
		if in.Location.Coordinates != nil && len(in.Location.Coordinates) != 2 {
			return apperror.InvalidArgument("location.coordinates", "coordinates must be [lon, lat]")
		}
		c.LocationName = in.Location.Name
		if len(in.Location.Coordinates) == 2 {
			lon, lat := in.Location.Coordinates[0], in.Location.Coordinates[1]
			c.LocationLon = &lon
			c.LocationLat = &lat
		}
		c.LocationShared = in.Location.IsShared
	}
	return nil
}

func filterBlank(tags []string) models.StringList {
	out := make(models.StringList, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}
