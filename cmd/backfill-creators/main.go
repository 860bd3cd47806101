package main

import (
	"context"
	"fmt"
	"log"

	"github.com/mpavlov/courtbook-api/internal/config"
	"github.com/mpavlov/courtbook-api/internal/database"
)

// Promotes legacy identities to first-class actor ids: reservations whose
// creator is only known by a legacy id get it copied into creator_id, and
// name-keyed signups are linked to the user whose group display name
// produces the same key.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	result, err := db.Pool.Exec(ctx, `
		UPDATE reservations
		SET creator_id = legacy_creator_id, updated_at = NOW()
		WHERE creator_id IS NULL AND legacy_creator_id IS NOT NULL
	`)
	if err != nil {
		log.Fatalf("Failed to backfill reservation creators: %v", err)
	}
	fmt.Printf("Backfilled %d reservation creators\n", result.RowsAffected())

	result, err = db.Pool.Exec(ctx, `
		UPDATE signups s
		SET user_id = gm.user_id, updated_at = NOW()
		FROM reservations r
		JOIN group_members gm ON gm.group_id = r.group_id
		WHERE s.reservation_id = r.id
		  AND s.user_id IS NULL
		  AND s.name_key IS NOT NULL
		  AND s.name_key = lower(regexp_replace(trim(gm.display_name), '\s+', '-', 'g'))
	`)
	if err != nil {
		log.Fatalf("Failed to backfill signup identities: %v", err)
	}
	fmt.Printf("Backfilled %d signup identities\n", result.RowsAffected())
}
