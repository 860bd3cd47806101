package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(500),
		provider VARCHAR(50) NOT NULL,
		provider_id VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(provider, provider_id)
	)`,

	`CREATE TABLE IF NOT EXISTS groups (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		owner_id UUID NOT NULL REFERENCES users(id),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS group_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(20) NOT NULL DEFAULT 'member',
		display_name VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(group_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		group_id UUID REFERENCES groups(id),
		group_name VARCHAR(255) NOT NULL DEFAULT '',
		visibility VARCHAR(20) NOT NULL DEFAULT 'group',
		venue VARCHAR(255) NOT NULL DEFAULT '',
		court VARCHAR(100) NOT NULL DEFAULT '',
		starts_at TIMESTAMP WITH TIME ZONE NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 90,
		creator_id UUID REFERENCES users(id),
		legacy_creator_id UUID,
		created_by_name VARCHAR(255) NOT NULL DEFAULT '',
		max_accepted INTEGER NOT NULL DEFAULT 0,
		allow_waitlist BOOLEAN NOT NULL DEFAULT TRUE,
		priority_ids UUID[] NOT NULL DEFAULT '{}',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS reservation_guests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		reservation_id UUID NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(reservation_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS signups (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		reservation_id UUID NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
		user_id UUID REFERENCES users(id),
		name_key VARCHAR(255),
		display_name VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(reservation_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS invites (
		token VARCHAR(64) PRIMARY KEY,
		target_type VARCHAR(20) NOT NULL,
		group_id UUID REFERENCES groups(id) ON DELETE CASCADE,
		reservation_id UUID REFERENCES reservations(id) ON DELETE CASCADE,
		created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		channel VARCHAR(20) NOT NULL DEFAULT 'link',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS audit_events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		group_id UUID NOT NULL,
		type VARCHAR(50) NOT NULL,
		actor_id UUID,
		actor_name VARCHAR(255) NOT NULL DEFAULT '',
		target_id UUID,
		target_name VARCHAR(255),
		metadata JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_group_members_group_id ON group_members(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_group_id ON reservations(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_creator_id ON reservations(creator_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_starts_at ON reservations(starts_at)`,
	`CREATE INDEX IF NOT EXISTS idx_reservation_guests_user_id ON reservation_guests(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_signups_reservation_id ON signups(reservation_id)`,
	`CREATE INDEX IF NOT EXISTS idx_signups_user_id ON signups(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invites_group_id ON invites(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_group_id ON audit_events(group_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,

	// Signups written before actor-id tracking carry only a name-derived key.
	// The partial unique index keeps the one-entry-per-name invariant for them.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_signups_name_key
		ON signups(reservation_id, name_key) WHERE user_id IS NULL`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
