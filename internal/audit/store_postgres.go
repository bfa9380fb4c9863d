package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists audit events append-only.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events (timestamp, actor_id, profile_id, action, request_id)
		VALUES ($1, $2, $3, $4, $5)
	`, event.Timestamp, event.ActorID, event.ProfileID, string(event.Action), event.RequestID)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByProfile(ctx context.Context, profileID string) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT timestamp, actor_id, profile_id, action, request_id
		FROM audit_events
		WHERE profile_id = $1
		ORDER BY timestamp
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(&e.Timestamp, &e.ActorID, &e.ProfileID, &action, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		out = append(out, e)
	}
	return out, rows.Err()
}
