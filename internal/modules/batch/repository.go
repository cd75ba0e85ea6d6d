package batch

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aristath/megasena/internal/domain"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Record is the audit row of one generated batch, without its games
type Record struct {
	ID           string             `json:"id"`
	CreatedAt    time.Time          `json:"createdAt"`
	Status       domain.BatchStatus `json:"status"`
	Requested    int                `json:"requested"`
	UnmetSlots   int                `json:"unmetSlots"`
	Seed         uint64             `json:"seed"`
	StoreVersion uint64             `json:"storeVersion"`
}

// Repository is the append-only audit trail in audit.db (batches table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new batch audit repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "batches").Logger(),
	}
}

// Record stores a batch. The batch must carry an id.
func (r *Repository) Record(ctx context.Context, batch *domain.GenerationBatch, storeVersion uint64) error {
	if batch == nil || batch.ID == "" {
		return fmt.Errorf("failed to record batch: missing id")
	}

	payload, err := encodeBatch(batch)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO batches (id, created_at, status, requested, unmet_slots, seed, store_version, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		batch.ID,
		time.Now().Unix(),
		string(batch.Status),
		batch.Requested,
		batch.UnmetSlots,
		strconv.FormatUint(batch.Seed, 10),
		int64(storeVersion),
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert batch %s: %w", batch.ID, err)
	}

	r.log.Debug().Str("batch_id", batch.ID).Int("bytes", len(payload)).Msg("Batch recorded")
	return nil
}

// GetBatch returns a recorded batch with its games.
func (r *Repository) GetBatch(ctx context.Context, id string) (*domain.GenerationBatch, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, "SELECT payload FROM batches WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query batch %s: %w", id, err)
	}

	return decodeBatch(payload)
}

// ListBatches returns the most recent audit rows, newest first.
func (r *Repository) ListBatches(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, status, requested, unmet_slots, seed, store_version
		FROM batches
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var (
			rec          Record
			createdAt    int64
			status, seed string
			storeVersion int64
		)
		if err := rows.Scan(&rec.ID, &createdAt, &status, &rec.Requested, &rec.UnmetSlots, &seed, &storeVersion); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		rec.Seed, err = strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("batch %s has invalid seed %q: %w", rec.ID, seed, err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		rec.Status = domain.BatchStatus(status)
		rec.StoreVersion = uint64(storeVersion)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}
	return records, nil
}

func encodeBatch(batch *domain.GenerationBatch) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(batch); err != nil {
		return nil, fmt.Errorf("failed to encode batch %s: %w", batch.ID, err)
	}
	return buf.Bytes(), nil
}

func decodeBatch(payload []byte) (*domain.GenerationBatch, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(payload))
	dec.SetCustomStructTag("json")

	var batch domain.GenerationBatch
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode batch payload: %w", err)
	}
	return &batch, nil
}
