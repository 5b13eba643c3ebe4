package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"moodring/internal/apperror"
	"moodring/internal/models"
)

const pgUniqueViolation = "23505"

// UserDB is the Postgres-backed UserStore.
type UserDB struct {
	db *sqlx.DB
}

var _ UserStore = (*UserDB)(nil)

func NewUserDB(db *sqlx.DB) *UserDB { return &UserDB{db: db} }

func (s *UserDB) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO users (id, email, password_hash, display_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName,
	).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("an account with this email already exists")
		}
		return err
	}
	return nil
}

func (s *UserDB) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, email, password_hash, display_name, is_admin, created_at
		 FROM users WHERE id=$1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, err
	}
	return &u, nil
}

func (s *UserDB) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, email, password_hash, display_name, is_admin, created_at
		 FROM users WHERE email=$1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, err
	}
	return &u, nil
}

func (s *UserDB) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

func (s *UserDB) Block(ctx context.Context, userID, blockedID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blocked_users (user_id, blocked_user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, blocked_user_id) DO NOTHING`,
		userID, blockedID)
	return err
}

func (s *UserDB) BlockedIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		`SELECT blocked_user_id FROM blocked_users WHERE user_id=$1`, userID)
	return ids, err
}

func (s *UserDB) BlockerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM blocked_users WHERE blocked_user_id=$1`, userID)
	return ids, err
}
