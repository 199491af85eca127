// Package postgres persists the XP ledger, security alerts, and the caller
// blocklist in PostgreSQL. The grant path runs ledger append and totals bump
// in one transaction with a compare-on-prior-total guard.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"helix/internal/vault"
	id "helix/pkg/domain"
	"helix/pkg/platform/sentinel"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ApplyGrant(ctx context.Context, entry vault.LedgerEntry, newLevel, newTier int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grant tx: %w", err)
	}
	defer tx.Rollback()

	// The guard makes the update a compare-and-swap on xp_total: a stale
	// prior matches zero rows and the whole grant rolls back.
	res, err := tx.ExecContext(ctx, `
		UPDATE player_records
		SET xp_total = xp_total + $3,
		    xp_lifetime = xp_lifetime + $3,
		    level = $4,
		    skill_tier = $5,
		    updated_at = $6
		WHERE user_id = $1 AND xp_total = $2
	`, uuid.UUID(entry.UserID), entry.PriorTotal, entry.Delta, newLevel, newTier, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("guarded totals update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO xp_ledger (
			id, user_id, delta, source, accuracy, gto_compliance,
			gate_passed, prior_total, new_total, caller_silo_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		entry.ID, uuid.UUID(entry.UserID), entry.Delta, entry.Source.String(),
		entry.AccuracyAtGrant, entry.GTOAtGrant, entry.GatePassed,
		entry.PriorTotal, entry.NewTotal, entry.CallerSiloID.String(), entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	return tx.Commit()
}

func (s *Store) History(ctx context.Context, userID id.UserID, limit int) ([]vault.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, delta, source, accuracy, gto_compliance,
		       gate_passed, prior_total, new_total, caller_silo_id, created_at
		FROM xp_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC, new_total DESC
		LIMIT $2
	`, uuid.UUID(userID), limit)
	if err != nil {
		return nil, fmt.Errorf("query xp history: %w", err)
	}
	defer rows.Close()

	var entries []vault.LedgerEntry
	for rows.Next() {
		var (
			e      vault.LedgerEntry
			uid    uuid.UUID
			source string
			silo   string
			acc    sql.NullFloat64
			gto    sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &uid, &e.Delta, &source, &acc, &gto,
			&e.GatePassed, &e.PriorTotal, &e.NewTotal, &silo, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.UserID = id.UserID(uid)
		e.Source = id.XPSource(source)
		e.CallerSiloID = id.SiloID(silo)
		if acc.Valid {
			v := acc.Float64
			e.AccuracyAtGrant = &v
		}
		if gto.Valid {
			v := gto.Float64
			e.GTOAtGrant = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) AppendAlert(ctx context.Context, alert vault.SecurityAlert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO security_alerts (id, user_id, kind, prior_total, attempted_total, source_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, alert.ID, nullableUser(alert.UserID), string(alert.Kind),
		alert.PriorTotal, alert.AttemptedTotal, alert.SourceIdentifier, alert.Timestamp)
	if err != nil {
		return fmt.Errorf("append security alert: %w", err)
	}
	return nil
}

func (s *Store) Alerts(ctx context.Context, userID *id.UserID, limit int) ([]vault.SecurityAlert, error) {
	query := `
		SELECT id, user_id, kind, prior_total, attempted_total, source_id, created_at
		FROM security_alerts
	`
	args := []any{limit}
	if userID != nil {
		query += ` WHERE user_id = $2`
		args = append(args, uuid.UUID(*userID))
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query security alerts: %w", err)
	}
	defer rows.Close()

	var alerts []vault.SecurityAlert
	for rows.Next() {
		var (
			a    vault.SecurityAlert
			uid  uuid.NullUUID
			kind string
		)
		if err := rows.Scan(&a.ID, &uid, &kind, &a.PriorTotal, &a.AttemptedTotal,
			&a.SourceIdentifier, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan security alert: %w", err)
		}
		a.Kind = vault.AlertKind(kind)
		if uid.Valid {
			a.UserID = id.UserID(uid.UUID)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *Store) IsBlocked(ctx context.Context, source string) (bool, error) {
	var blocked bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blocked_sources WHERE source_id = $1)`, source,
	).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("check blocklist: %w", err)
	}
	return blocked, nil
}

func (s *Store) Block(ctx context.Context, source string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blocked_sources (source_id, blocked_at)
		VALUES ($1, $2)
		ON CONFLICT (source_id) DO NOTHING
	`, source, at)
	if err != nil {
		return fmt.Errorf("block source: %w", err)
	}
	return nil
}

func nullableUser(userID id.UserID) any {
	if userID.IsNil() {
		return nil
	}
	return uuid.UUID(userID)
}
