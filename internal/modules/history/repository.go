package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/megasena/internal/database"
	"github.com/aristath/megasena/internal/domain"
	"github.com/rs/zerolog"
)

// Repository persists draws in history.db (draws table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new draw repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "draws").Logger(),
	}
}

// SaveDraws upserts draws in a single transaction and returns how many rows changed.
func (r *Repository) SaveDraws(ctx context.Context, draws []domain.Draw) (int, error) {
	for _, d := range draws {
		if err := d.Validate(); err != nil {
			return 0, err
		}
	}

	now := time.Now().Unix()
	saved := 0

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO draws (contest, drawn_on, n1, n2, n3, n4, n5, n6, mask, imported_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(contest) DO UPDATE SET
				drawn_on = excluded.drawn_on,
				n1 = excluded.n1, n2 = excluded.n2, n3 = excluded.n3,
				n4 = excluded.n4, n5 = excluded.n5, n6 = excluded.n6,
				mask = excluded.mask,
				imported_at = excluded.imported_at
			WHERE draws.mask != excluded.mask OR IFNULL(draws.drawn_on, 0) != IFNULL(excluded.drawn_on, 0)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare draw upsert: %w", err)
		}
		defer stmt.Close()

		for _, d := range draws {
			var drawnOn sql.NullInt64
			if !d.Date.IsZero() {
				drawnOn = sql.NullInt64{Int64: d.Date.Unix(), Valid: true}
			}
			n := d.Numbers
			res, err := stmt.ExecContext(ctx,
				d.Contest, drawnOn,
				n[0], n[1], n[2], n[3], n[4], n[5],
				int64(n.Mask()), now,
			)
			if err != nil {
				return fmt.Errorf("failed to save contest %d: %w", d.Contest, err)
			}
			if affected, err := res.RowsAffected(); err == nil {
				saved += int(affected)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Debug().Int("input", len(draws)).Int("saved", saved).Msg("Saved draws")
	return saved, nil
}

// ListDraws returns every draw ordered by contest, oldest first.
func (r *Repository) ListDraws(ctx context.Context) ([]domain.Draw, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT contest, drawn_on, n1, n2, n3, n4, n5, n6
		FROM draws
		ORDER BY contest ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws: %w", err)
	}
	defer rows.Close()

	var draws []domain.Draw
	for rows.Next() {
		var d domain.Draw
		var drawnOn sql.NullInt64
		n := &d.Numbers

		if err := rows.Scan(&d.Contest, &drawnOn, &n[0], &n[1], &n[2], &n[3], &n[4], &n[5]); err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		if drawnOn.Valid {
			d.Date = time.Unix(drawnOn.Int64, 0).UTC()
		}
		draws = append(draws, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draws: %w", err)
	}

	return draws, nil
}

// Count returns the amount of stored draws.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM draws").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count draws: %w", err)
	}
	return count, nil
}

// LatestContest returns the highest stored contest number, or 0 when empty.
func (r *Repository) LatestContest(ctx context.Context) (int, error) {
	var latest sql.NullInt64
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(contest) FROM draws").Scan(&latest); err != nil {
		return 0, fmt.Errorf("failed to get latest contest: %w", err)
	}
	return int(latest.Int64), nil
}
