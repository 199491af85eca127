// Package postgres persists audit events in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"helix/internal/audit"
	id "helix/pkg/domain"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var uid any
	if event.UserID != nil {
		uid = uuid.UUID(*event.UserID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, category, user_id, subject, action, decision, reason, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, event.ID, string(event.Category), uid, event.Subject, event.Action,
		event.Decision, event.Reason, event.RequestID, event.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID id.UserID, limit int) ([]audit.Event, error) {
	return s.list(ctx, `
		SELECT id, category, user_id, subject, action, decision, reason, request_id, created_at
		FROM audit_events WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2
	`, uuid.UUID(userID), limit)
}

func (s *Store) ListBySubject(ctx context.Context, subject string, limit int) ([]audit.Event, error) {
	return s.list(ctx, `
		SELECT id, category, user_id, subject, action, decision, reason, request_id, created_at
		FROM audit_events WHERE subject = $1
		ORDER BY created_at DESC LIMIT $2
	`, subject, limit)
}

func (s *Store) ListByAction(ctx context.Context, action string, limit int) ([]audit.Event, error) {
	return s.list(ctx, `
		SELECT id, category, user_id, subject, action, decision, reason, request_id, created_at
		FROM audit_events WHERE action = $1
		ORDER BY created_at DESC LIMIT $2
	`, action, limit)
}

func (s *Store) list(ctx context.Context, query string, key any, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, key, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e        audit.Event
			category string
			uid      uuid.NullUUID
		)
		if err := rows.Scan(&e.ID, &category, &uid, &e.Subject, &e.Action,
			&e.Decision, &e.Reason, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.Category(category)
		if uid.Valid {
			u := id.UserID(uid.UUID)
			e.UserID = &u
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
