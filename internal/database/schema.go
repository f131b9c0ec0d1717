package database

import (
	"context"
	"fmt"

	"github.com/roomieradar/roomieradar/internal/telemetry"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id           TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	full_name         TEXT NOT NULL DEFAULT '',
	birth_date        DATE,
	gender            TEXT NOT NULL DEFAULT '' CHECK (gender IN ('Male', 'Female', 'Other', '')),
	course            TEXT NOT NULL DEFAULT '',
	year_of_study     TEXT NOT NULL DEFAULT '',
	permanent_address TEXT NOT NULL DEFAULT '',
	contact_number    TEXT NOT NULL DEFAULT '',
	social_links      JSONB NOT NULL DEFAULT '{}'::jsonb,
	bio               TEXT NOT NULL DEFAULT '',
	profile_picture   TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS preferences (
	user_id          TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	preferred_gender TEXT NOT NULL DEFAULT '',
	department       TEXT NOT NULL DEFAULT '',
	year_of_study    TEXT NOT NULL DEFAULT '',
	seater_type      TEXT NOT NULL DEFAULT '',
	hobbies          TEXT[] NOT NULL DEFAULT '{}',
	purpose          TEXT NOT NULL DEFAULT '',
	current_hostel   TEXT NOT NULL DEFAULT '',
	cleanliness      TEXT NOT NULL DEFAULT '',
	smoking          TEXT NOT NULL DEFAULT '',
	drinking         TEXT NOT NULL DEFAULT '',
	sleep_schedule   TEXT NOT NULL DEFAULT '',
	study_style      TEXT NOT NULL DEFAULT '',
	noise_tolerance  TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS swipes (
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	target_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	direction  TEXT NOT NULL CHECK (direction IN ('left', 'right')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, target_id),
	CHECK (user_id <> target_id)
);

CREATE INDEX IF NOT EXISTS idx_swipes_target ON swipes (target_id, direction);

CREATE TABLE IF NOT EXISTS mutual_matches (
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	matched_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, matched_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id           TEXT PRIMARY KEY,
	chat_id      TEXT NOT NULL,
	sender_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	recipient_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	body         TEXT NOT NULL,
	read         BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages (chat_id, created_at);
`

// Migrate creates the tables if they do not exist yet. It is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	telemetry.GetContextualLogger(ctx).WithField("operation", "database_migrate").Info("Database schema is up to date")
	return nil
}
