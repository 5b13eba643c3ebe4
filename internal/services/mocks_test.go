package services

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"moodring/internal/apperror"
	"moodring/internal/models"
	"moodring/internal/store"
)

// In-memory stores implementing the store interfaces, so service logic is
// exercised without a database. Error fields force failures per method
// group to test degradation paths.

type memUsers struct {
	users  map[string]*models.User
	blocks map[string][]string // user id -> ids they blocked
	err    error
}

var _ store.UserStore = (*memUsers)(nil)

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*models.User{}, blocks: map[string][]string{}}
}

func (m *memUsers) addUser(id string) *models.User {
	u := &models.User{ID: id, Email: id + "@example.com", CreatedAt: time.Now()}
	m.users[id] = u
	return u
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = store.NewID()
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *memUsers) Count(_ context.Context) (int, error) { return len(m.users), nil }

func (m *memUsers) Block(_ context.Context, userID, blockedID string) error {
	for _, id := range m.blocks[userID] {
		if id == blockedID {
			return nil
		}
	}
	m.blocks[userID] = append(m.blocks[userID], blockedID)
	return nil
}

func (m *memUsers) BlockedIDs(_ context.Context, userID string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]string(nil), m.blocks[userID]...), nil
}

func (m *memUsers) BlockerIDs(_ context.Context, userID string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for blocker, blocked := range m.blocks {
		for _, id := range blocked {
			if id == userID {
				out = append(out, blocker)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

type memCheckIns struct {
	items   []models.CheckIn
	likes   map[string]map[string]struct{}
	listErr error
	tsErr   error
	cntErr  error
}

var _ store.CheckInStore = (*memCheckIns)(nil)

func newMemCheckIns() *memCheckIns {
	return &memCheckIns{likes: map[string]map[string]struct{}{}}
}

func (m *memCheckIns) add(c models.CheckIn) models.CheckIn {
	if c.ID == "" {
		c.ID = store.NewID()
	}
	if c.Privacy == "" {
		c.Privacy = models.PrivacyPrivate
	}
	m.items = append(m.items, c)
	return c
}

func (m *memCheckIns) Create(_ context.Context, c *models.CheckIn) error {
	if c.ID == "" {
		c.ID = store.NewID()
	}
	if c.Privacy == "" {
		c.Privacy = models.PrivacyPrivate
	}
	now := time.Now().UTC()
	if c.OccurredAt.IsZero() {
		c.OccurredAt = now
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	m.items = append(m.items, *c)
	return nil
}

func (m *memCheckIns) GetByID(_ context.Context, id string) (*models.CheckIn, error) {
	for _, c := range m.items {
		if c.ID == id {
			out := c
			out.LikeCount = len(m.likes[id])
			return &out, nil
		}
	}
	return nil, apperror.NotFound("check-in", id)
}

func (m *memCheckIns) Update(_ context.Context, c *models.CheckIn) error {
	for i := range m.items {
		if m.items[i].ID == c.ID {
			m.items[i] = *c
			return nil
		}
	}
	return apperror.NotFound("check-in", c.ID)
}

func (m *memCheckIns) Delete(_ context.Context, id string) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("check-in", id)
}

func matches(c models.CheckIn, userID string, f store.CheckInFilter) bool {
	if c.UserID != userID {
		return false
	}
	if f.Privacy != "" && c.Privacy != f.Privacy {
		return false
	}
	if f.Emotion != "" && c.EmotionName != f.Emotion {
		return false
	}
	if f.Start != nil && c.OccurredAt.Before(*f.Start) {
		return false
	}
	if f.End != nil && !c.OccurredAt.Before(*f.End) {
		return false
	}
	return true
}

func sortNewestFirst(list []models.CheckIn) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].OccurredAt.Equal(list[j].OccurredAt) {
			return list[i].OccurredAt.After(list[j].OccurredAt)
		}
		return list[i].ID > list[j].ID
	})
}

func page(list []models.CheckIn, skip, limit int) []models.CheckIn {
	if skip >= len(list) {
		return []models.CheckIn{}
	}
	list = list[skip:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func (m *memCheckIns) ListForUser(_ context.Context, userID string, f store.CheckInFilter) ([]models.CheckIn, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.CheckIn{}
	for _, c := range m.items {
		if matches(c, userID, f) {
			c.LikeCount = len(m.likes[c.ID])
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return page(out, f.Skip, f.Limit), nil
}

func (m *memCheckIns) CountForUser(_ context.Context, userID string, f store.CheckInFilter) (int, error) {
	if m.cntErr != nil {
		return 0, m.cntErr
	}
	n := 0
	for _, c := range m.items {
		if matches(c, userID, f) {
			n++
		}
	}
	return n, nil
}

func (m *memCheckIns) ListPublic(_ context.Context, excluded []string, sortBy string, skip, limit int) ([]models.CheckIn, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	shunned := map[string]struct{}{}
	for _, id := range excluded {
		shunned[id] = struct{}{}
	}
	out := []models.CheckIn{}
	for _, c := range m.items {
		if c.Privacy != models.PrivacyPublic {
			continue
		}
		if _, ok := shunned[c.UserID]; ok {
			continue
		}
		c.LikeCount = len(m.likes[c.ID])
		out = append(out, c)
	}
	sortNewestFirst(out)
	if sortBy == store.SortHottest {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LikeCount > out[j].LikeCount
		})
	}
	return page(out, skip, limit), nil
}

func (m *memCheckIns) Timestamps(_ context.Context, userID string) ([]time.Time, error) {
	if m.tsErr != nil {
		return nil, m.tsErr
	}
	var ts []time.Time
	for _, c := range m.items {
		if c.UserID == userID {
			ts = append(ts, c.OccurredAt)
		}
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].After(ts[j]) })
	return ts, nil
}

func (m *memCheckIns) Like(_ context.Context, checkinID, userID string) error {
	if m.likes[checkinID] == nil {
		m.likes[checkinID] = map[string]struct{}{}
	}
	m.likes[checkinID][userID] = struct{}{}
	return nil
}

func (m *memCheckIns) Unlike(_ context.Context, checkinID, userID string) error {
	delete(m.likes[checkinID], userID)
	return nil
}

func (m *memCheckIns) Count(_ context.Context) (int, error) { return len(m.items), nil }

func (m *memCheckIns) CountSince(_ context.Context, t time.Time) (int, error) {
	n := 0
	for _, c := range m.items {
		if !c.OccurredAt.Before(t) {
			n++
		}
	}
	return n, nil
}

func (m *memCheckIns) CountActiveUsersSince(_ context.Context, t time.Time) (int, error) {
	seen := map[string]struct{}{}
	for _, c := range m.items {
		if !c.OccurredAt.Before(t) {
			seen[c.UserID] = struct{}{}
		}
	}
	return len(seen), nil
}

// Shared test fixtures.

func f64(v float64) *float64 { return &v }

func str(s string) *string { return &s }

func testEnc(t *testing.T) *EncryptionService {
	t.Helper()
	enc, err := NewEncryptionService(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("building encryption service: %v", err)
	}
	return enc
}

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}
