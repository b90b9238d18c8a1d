// internal/database/guest.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Guest is a persisted participant identity. Guests have no credentials;
// the row exists so display names and reconnect tokens survive restarts of
// the client, not of the service.
type Guest struct {
	ID          uuid.UUID
	DisplayName string
	FirstSeen   time.Time
	LastSeen    time.Time
}

// UpsertGuest records a participant, refreshing the name and last-seen
// timestamp on repeat visits.
func UpsertGuest(ctx context.Context, id uuid.UUID, displayName string) error {
	q := `
		INSERT INTO guests (id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, last_seen = now()
	`
	if _, err := DB.Exec(ctx, q, id, displayName); err != nil {
		return fmt.Errorf("failed to upsert guest %s: %w", id, err)
	}
	return nil
}

// GetGuest looks a guest up by ID.
func GetGuest(ctx context.Context, id uuid.UUID) (*Guest, error) {
	q := `SELECT id, display_name, first_seen, last_seen FROM guests WHERE id = $1`
	var g Guest
	if err := DB.QueryRow(ctx, q, id).Scan(&g.ID, &g.DisplayName, &g.FirstSeen, &g.LastSeen); err != nil {
		return nil, fmt.Errorf("failed to fetch guest %s: %w", id, err)
	}
	return &g, nil
}
