// Package postgres persists player records in PostgreSQL. The store is pure
// I/O; derivations live in the owning services.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"helix/internal/player"
	id "helix/pkg/domain"
	"helix/pkg/platform/sentinel"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const recordColumns = `
	user_id, xp_total, xp_lifetime, level, skill_tier,
	current_streak, longest_streak, last_active_at,
	dna_accuracy, dna_grit, dna_aggression, dna_wealth, dna_luck,
	dna_composite, dna_computed_at,
	archived, created_at, updated_at
`

func (s *Store) Get(ctx context.Context, userID id.UserID) (*player.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM player_records WHERE user_id = $1`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(userID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get player record: %w", err)
	}
	return rec, nil
}

func (s *Store) Ensure(ctx context.Context, userID id.UserID, now time.Time) (*player.Record, error) {
	query := `
		INSERT INTO player_records (user_id, level, skill_tier, created_at, updated_at)
		VALUES ($1, 1, 1, $2, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + recordColumns
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(userID), now))
	if err != nil {
		return nil, fmt.Errorf("ensure player record: %w", err)
	}
	return rec, nil
}

func (s *Store) SetStreak(ctx context.Context, userID id.UserID, current, longest int, lastActiveAt time.Time) error {
	query := `
		UPDATE player_records
		SET current_streak = $2, longest_streak = $3, last_active_at = $4, updated_at = $4
		WHERE user_id = $1
	`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(userID), current, longest, lastActiveAt)
	if err != nil {
		return fmt.Errorf("set streak: %w", err)
	}
	return requireRow(res)
}

func (s *Store) SetSnapshot(ctx context.Context, userID id.UserID, p player.Profile) error {
	query := `
		UPDATE player_records
		SET dna_accuracy = $2, dna_grit = $3, dna_aggression = $4, dna_wealth = $5,
		    dna_luck = $6, dna_composite = $7, dna_computed_at = $8, updated_at = $8
		WHERE user_id = $1
	`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(userID),
		p.Accuracy, p.Grit, p.Aggression, p.Wealth, p.Luck, p.Composite, p.ComputedAt)
	if err != nil {
		return fmt.Errorf("set dna snapshot: %w", err)
	}
	return requireRow(res)
}

func (s *Store) Archive(ctx context.Context, userID id.UserID, now time.Time) error {
	query := `UPDATE player_records SET archived = TRUE, updated_at = $2 WHERE user_id = $1`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(userID), now)
	if err != nil {
		return fmt.Errorf("archive player record: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*player.Record, error) {
	var (
		rec        player.Record
		uid        uuid.UUID
		lastActive sql.NullTime
		computedAt sql.NullTime
	)
	err := row.Scan(
		&uid, &rec.XPTotal, &rec.XPLifetime, &rec.Level, &rec.SkillTier,
		&rec.CurrentStreak, &rec.LongestStreak, &lastActive,
		&rec.DNA.Accuracy, &rec.DNA.Grit, &rec.DNA.Aggression, &rec.DNA.Wealth, &rec.DNA.Luck,
		&rec.DNA.Composite, &computedAt,
		&rec.Archived, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.UserID = id.UserID(uid)
	if lastActive.Valid {
		t := lastActive.Time
		rec.LastActiveAt = &t
	}
	if computedAt.Valid {
		rec.DNA.ComputedAt = computedAt.Time
	}
	return &rec, nil
}
