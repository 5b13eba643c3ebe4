// Package services contains the feed-visibility and mood-analytics core.
// Every method is a stateless function of (stored data, parameters, an
// explicit now); nothing here mutates check-ins or users except the
// explicit block and like actions routed through the stores.
package services

import (
	"context"
	"fmt"

	"moodring/internal/store"
)

// VisibilityService computes which authors must never appear in anything
// shown to a viewer. Blocking is stored one-way but enforced both ways:
// if A blocked B, each is excluded from the other's feed.
type VisibilityService struct {
	users store.UserStore
}

func NewVisibilityService(users store.UserStore) *VisibilityService {
	return &VisibilityService{users: users}
}

// ResolveExcluded returns the union of the viewer's block list and the set
// of users who blocked the viewer. A viewer with no block rows in either
// direction gets an empty, non-nil set.
func (s *VisibilityService) ResolveExcluded(ctx context.Context, viewerID string) (map[string]struct{}, error) {
	blocked, err := s.users.BlockedIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolving blocked users: %w", err)
	}
	blockers, err := s.users.BlockerIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolving blocking users: %w", err)
	}

	excluded := make(map[string]struct{}, len(blocked)+len(blockers))
	for _, id := range blocked {
		excluded[id] = struct{}{}
	}
	for _, id := range blockers {
		excluded[id] = struct{}{}
	}
	return excluded, nil
}
