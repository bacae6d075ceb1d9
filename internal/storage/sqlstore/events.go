package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

func (q *queries) recordEvent(ctx context.Context, entity string, entityID int64, eventType types.EventType, actorID int64, oldValue, newValue *string) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO events (entity, entity_id, event_type, actor_id, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entity, entityID, string(eventType), actorID, stringPtrArg(oldValue), stringPtrArg(newValue), q.stamp())
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// GetEvents returns the audit trail of one entity, newest first.
func (s *Store) GetEvents(ctx context.Context, entity string, entityID int64, limit int) ([]*types.Event, error) {
	query := `
		SELECT id, entity, entity_id, event_type, actor_id, old_value, new_value, created_at
		FROM events
		WHERE entity = ? AND entity_id = ?
		ORDER BY id DESC`
	args := []any{entity, entityID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("get events", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*types.Event
	for rows.Next() {
		var (
			e         types.Event
			eventType string
			oldValue  sql.NullString
			newValue  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &eventType, &e.ActorID, &oldValue, &newValue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.EventType = types.EventType(eventType)
		e.OldValue = nullStringPtr(oldValue)
		e.NewValue = nullStringPtr(newValue)
		e.CreatedAt = parseTimestamp(createdAt)
		events = append(events, &e)
	}
	return events, rows.Err()
}
