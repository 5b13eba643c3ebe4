package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"moodring/internal/apperror"
	"moodring/internal/models"
)

// checkInColumns is the shared select list. like_count is derived from the
// likes table, keeping the set itself out of list payloads.
const checkInColumns = `c.id, c.user_id, c.emotion_name, c.pleasantness, c.intensity,
	c.control, c.clarity, c.reason, c.people, c.activities, c.location_name,
	c.location_lon, c.location_lat, c.location_shared, c.privacy,
	c.occurred_at, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM checkin_likes l WHERE l.checkin_id = c.id) AS like_count`

// CheckInDB is the Postgres-backed CheckInStore.
type CheckInDB struct {
	db *sqlx.DB
}

var _ CheckInStore = (*CheckInDB)(nil)

func NewCheckInDB(db *sqlx.DB) *CheckInDB { return &CheckInDB{db: db} }

func (s *CheckInDB) Create(ctx context.Context, c *models.CheckIn) error {
	if c.ID == "" {
		c.ID = NewID()
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkins (id, user_id, emotion_name, pleasantness, intensity,
		                       control, clarity, reason, people, activities,
		                       location_name, location_lon, location_lat,
		                       location_shared, privacy, occurred_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		c.ID, c.UserID, c.EmotionName, c.Pleasantness, c.Intensity,
		c.Control, c.Clarity, c.Reason, c.People, c.Activities,
		c.LocationName, c.LocationLon, c.LocationLat,
		c.LocationShared, c.Privacy, c.OccurredAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: creating check-in: %w", err)
	}
	return nil
}

func (s *CheckInDB) GetByID(ctx context.Context, id string) (*models.CheckIn, error) {
	var c models.CheckIn
	err := s.db.GetContext(ctx, &c,
		`SELECT `+checkInColumns+` FROM checkins c WHERE c.id=$1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("check-in", id)
		}
		return nil, fmt.Errorf("store: getting check-in %s: %w", id, err)
	}
	return &c, nil
}

// Update writes the owner-mutable fields only; id, user_id and occurred_at
// are immutable after creation.
func (s *CheckInDB) Update(ctx context.Context, c *models.CheckIn) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE checkins
		 SET emotion_name=$1, pleasantness=$2, intensity=$3, control=$4, clarity=$5,
		     reason=$6, people=$7, activities=$8, location_name=$9, location_lon=$10,
		     location_lat=$11, location_shared=$12, privacy=$13, updated_at=$14
		 WHERE id=$15`,
		c.EmotionName, c.Pleasantness, c.Intensity, c.Control, c.Clarity,
		c.Reason, c.People, c.Activities, c.LocationName, c.LocationLon,
		c.LocationLat, c.LocationShared, c.Privacy, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("store: updating check-in %s: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("check-in", c.ID)
	}
	return nil
}

func (s *CheckInDB) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM checkins WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("store: deleting check-in %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("check-in", id)
	}
	return nil
}

func (s *CheckInDB) ListForUser(ctx context.Context, userID string, f CheckInFilter) ([]models.CheckIn, error) {
	where, args := buildUserFilter(userID, f)
	query := `SELECT ` + checkInColumns + ` FROM checkins c ` + where +
		` ORDER BY c.occurred_at DESC, c.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Skip > 0 {
		args = append(args, f.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	out := []models.CheckIn{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("store: listing check-ins: %w", err)
	}
	return out, nil
}

func (s *CheckInDB) CountForUser(ctx context.Context, userID string, f CheckInFilter) (int, error) {
	where, args := buildUserFilter(userID, f)
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM checkins c `+where, args...); err != nil {
		return 0, fmt.Errorf("store: counting check-ins: %w", err)
	}
	return n, nil
}

func buildUserFilter(userID string, f CheckInFilter) (string, []interface{}) {
	where := "WHERE c.user_id=$1"
	args := []interface{}{userID}
	if f.Privacy != "" {
		args = append(args, f.Privacy)
		where += fmt.Sprintf(" AND c.privacy=$%d", len(args))
	}
	if f.Emotion != "" {
		args = append(args, f.Emotion)
		where += fmt.Sprintf(" AND c.emotion_name=$%d", len(args))
	}
	if f.Start != nil {
		args = append(args, *f.Start)
		where += fmt.Sprintf(" AND c.occurred_at >= $%d", len(args))
	}
	if f.End != nil {
		args = append(args, *f.End)
		where += fmt.Sprintf(" AND c.occurred_at < $%d", len(args))
	}
	return where, args
}

func (s *CheckInDB) ListPublic(ctx context.Context, excluded []string, sort string, skip, limit int) ([]models.CheckIn, error) {
	query := `SELECT ` + checkInColumns + ` FROM checkins c WHERE c.privacy = 'public'`
	args := []interface{}{}
	if len(excluded) > 0 {
		query += " AND c.user_id NOT IN (?)"
		args = append(args, excluded)
	}
	// Secondary keys keep offset pagination stable for equal primary keys.
	switch sort {
	case SortHottest:
		query += " ORDER BY like_count DESC, c.occurred_at DESC, c.id DESC"
	default:
		query += " ORDER BY c.occurred_at DESC, c.id DESC"
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: building feed query: %w", err)
	}
	query = s.db.Rebind(query)

	out := []models.CheckIn{}
	if err := s.db.SelectContext(ctx, &out, query, inArgs...); err != nil {
		return nil, fmt.Errorf("store: listing public check-ins: %w", err)
	}
	return out, nil
}

func (s *CheckInDB) Timestamps(ctx context.Context, userID string) ([]time.Time, error) {
	var ts []time.Time
	err := s.db.SelectContext(ctx, &ts,
		`SELECT occurred_at FROM checkins WHERE user_id=$1 ORDER BY occurred_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: listing check-in timestamps: %w", err)
	}
	return ts, nil
}

func (s *CheckInDB) Like(ctx context.Context, checkinID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkin_likes (checkin_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (checkin_id, user_id) DO NOTHING`,
		checkinID, userID)
	return err
}

func (s *CheckInDB) Unlike(ctx context.Context, checkinID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM checkin_likes WHERE checkin_id=$1 AND user_id=$2`,
		checkinID, userID)
	return err
}

func (s *CheckInDB) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM checkins`)
	return n, err
}

func (s *CheckInDB) CountSince(ctx context.Context, t time.Time) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM checkins WHERE occurred_at >= $1`, t)
	return n, err
}

func (s *CheckInDB) CountActiveUsersSince(ctx context.Context, t time.Time) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(DISTINCT user_id) FROM checkins WHERE occurred_at >= $1`, t)
	return n, err
}
