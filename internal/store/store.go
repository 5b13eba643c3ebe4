// Package store provides persistence behind narrow interfaces so the
// service layer can be exercised against in-memory fakes in tests.
package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"moodring/internal/models"
)

// Feed sort orders.
const (
	SortTimestamp = "timestamp"
	SortHottest   = "hottest"
)

// CheckInFilter narrows per-user check-in queries. Zero values mean
// "no constraint"; a Limit of 0 returns every match.
type CheckInFilter struct {
	Privacy string
	Emotion string
	Start   *time.Time // occurred_at >= Start
	End     *time.Time // occurred_at < End
	Limit   int
	Skip    int
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int, error)

	// Block records that userID blocked blockedID. Idempotent.
	Block(ctx context.Context, userID, blockedID string) error
	// BlockedIDs returns the ids userID has blocked.
	BlockedIDs(ctx context.Context, userID string) ([]string, error)
	// BlockerIDs returns the ids of users who have blocked userID.
	BlockerIDs(ctx context.Context, userID string) ([]string, error)
}

type CheckInStore interface {
	Create(ctx context.Context, c *models.CheckIn) error
	GetByID(ctx context.Context, id string) (*models.CheckIn, error)
	Update(ctx context.Context, c *models.CheckIn) error
	Delete(ctx context.Context, id string) error

	// ListForUser returns a user's check-ins matching the filter, newest
	// first (occurred_at DESC, id DESC).
	ListForUser(ctx context.Context, userID string, f CheckInFilter) ([]models.CheckIn, error)
	CountForUser(ctx context.Context, userID string, f CheckInFilter) (int, error)

	// ListPublic returns public check-ins from owners outside the excluded
	// set, ordered per sort with deterministic tie-breaks.
	ListPublic(ctx context.Context, excluded []string, sort string, skip, limit int) ([]models.CheckIn, error)

	// Timestamps returns every occurred_at for the user, newest first.
	Timestamps(ctx context.Context, userID string) ([]time.Time, error)

	Like(ctx context.Context, checkinID, userID string) error
	Unlike(ctx context.Context, checkinID, userID string) error

	// Operator stats.
	Count(ctx context.Context) (int, error)
	CountSince(ctx context.Context, t time.Time) (int, error)
	CountActiveUsersSince(ctx context.Context, t time.Time) (int, error)
}

// NewID returns a fresh 24-character hex document id.
func NewID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return hex.EncodeToString(b)
}
