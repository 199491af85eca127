// Package postgres persists drill samples and axis inputs in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"helix/internal/dna"
	"helix/internal/player"
	id "helix/pkg/domain"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) AppendDrill(ctx context.Context, sample dna.DrillSample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drill_samples (id, user_id, drill_id, accuracy, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sample.ID, uuid.UUID(sample.UserID), uuid.UUID(sample.DrillID), sample.Accuracy, sample.CreatedAt)
	if err != nil {
		return fmt.Errorf("append drill sample: %w", err)
	}
	return nil
}

func (s *Store) RecentDrills(ctx context.Context, userID id.UserID, limit int) ([]dna.DrillSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, drill_id, accuracy, created_at
		FROM drill_samples
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, uuid.UUID(userID), limit)
	if err != nil {
		return nil, fmt.Errorf("query drill samples: %w", err)
	}
	defer rows.Close()

	var samples []dna.DrillSample
	for rows.Next() {
		var (
			d        dna.DrillSample
			uid, did uuid.UUID
		)
		if err := rows.Scan(&d.ID, &uid, &did, &d.Accuracy, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan drill sample: %w", err)
		}
		d.UserID = id.UserID(uid)
		d.DrillID = id.DrillID(did)
		samples = append(samples, d)
	}
	return samples, rows.Err()
}

func (s *Store) SetAxisInput(ctx context.Context, input dna.AxisInput) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO axis_inputs (user_id, axis, value, secondary_value, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, axis)
		DO UPDATE SET value = EXCLUDED.value,
		              secondary_value = EXCLUDED.secondary_value,
		              updated_at = EXCLUDED.updated_at
	`, uuid.UUID(input.UserID), string(input.Axis), input.Value, input.Secondary, input.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert axis input: %w", err)
	}
	return nil
}

func (s *Store) AxisInputs(ctx context.Context, userID id.UserID) (map[player.Axis]dna.AxisInput, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, axis, value, secondary_value, updated_at
		FROM axis_inputs
		WHERE user_id = $1
	`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query axis inputs: %w", err)
	}
	defer rows.Close()

	out := make(map[player.Axis]dna.AxisInput)
	for rows.Next() {
		var (
			in        dna.AxisInput
			uid       uuid.UUID
			axis      string
			secondary sql.NullFloat64
		)
		if err := rows.Scan(&uid, &axis, &in.Value, &secondary, &in.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan axis input: %w", err)
		}
		in.UserID = id.UserID(uid)
		in.Axis = player.Axis(axis)
		if secondary.Valid {
			v := secondary.Float64
			in.Secondary = &v
		}
		out[in.Axis] = in
	}
	return out, rows.Err()
}
