package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func RunMigrations(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
    id CHAR(24) PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    display_name TEXT,
    is_admin BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS blocked_users (
    user_id CHAR(24) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    blocked_user_id CHAR(24) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, blocked_user_id)
);
CREATE INDEX IF NOT EXISTS idx_blocked_users_blocked ON blocked_users(blocked_user_id);

CREATE TABLE IF NOT EXISTS checkins (
    id CHAR(24) PRIMARY KEY,
    user_id CHAR(24) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    emotion_name TEXT NOT NULL,
    pleasantness DOUBLE PRECISION,
    intensity DOUBLE PRECISION,
    control DOUBLE PRECISION,
    clarity DOUBLE PRECISION,
    reason TEXT,
    people JSONB NOT NULL DEFAULT '[]',
    activities JSONB NOT NULL DEFAULT '[]',
    location_name TEXT,
    location_lon DOUBLE PRECISION,
    location_lat DOUBLE PRECISION,
    location_shared BOOLEAN NOT NULL DEFAULT false,
    privacy TEXT NOT NULL DEFAULT 'private' CHECK (privacy IN ('private', 'friends', 'public')),
    occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_checkins_user_occurred ON checkins(user_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_checkins_privacy_occurred ON checkins(privacy, occurred_at DESC);

CREATE TABLE IF NOT EXISTS checkin_likes (
    checkin_id CHAR(24) NOT NULL REFERENCES checkins(id) ON DELETE CASCADE,
    user_id CHAR(24) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (checkin_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_checkin_likes_user ON checkin_likes(user_id);
`
	_, err := db.ExecContext(context.Background(), schema)
	if err != nil {
		return err
	}

	alters := `
DO $$ BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns WHERE table_name='users' AND column_name='display_name'
    ) THEN
        ALTER TABLE users ADD COLUMN display_name TEXT;
    END IF;
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns WHERE table_name='users' AND column_name='is_admin'
    ) THEN
        ALTER TABLE users ADD COLUMN is_admin BOOLEAN NOT NULL DEFAULT false;
    END IF;
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns WHERE table_name='checkins' AND column_name='location_shared'
    ) THEN
        ALTER TABLE checkins ADD COLUMN location_shared BOOLEAN NOT NULL DEFAULT false;
    END IF;
END $$;`
	_, err = db.ExecContext(context.Background(), alters)
	return err
}
