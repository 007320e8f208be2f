package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"slot0Scope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pool_price_blocks (
	pool_address      TEXT        NOT NULL,
	slot_key          TEXT        NOT NULL,
	block_number      BIGINT      NOT NULL,
	block_hash        TEXT        NOT NULL,
	block_timestamp   TIMESTAMPTZ NOT NULL,
	transaction_count BIGINT      NOT NULL,
	diagnostic        TEXT        NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (pool_address, slot_key, block_number)
);

CREATE TABLE IF NOT EXISTS pool_slot0_changes (
	pool_address   TEXT    NOT NULL,
	slot_key       TEXT    NOT NULL,
	block_number   BIGINT  NOT NULL,
	position       INTEGER NOT NULL,
	tx_hash        TEXT    NOT NULL,
	sqrt_price_x96 NUMERIC(49, 0) NOT NULL,
	tick           INTEGER NOT NULL,
	PRIMARY KEY (pool_address, slot_key, block_number, position)
);

CREATE TABLE IF NOT EXISTS indexer_state (
	name                 TEXT PRIMARY KEY,
	last_processed_block BIGINT NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for price changes and progress.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables used by the store if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpsertBlockPriceChanges replaces the stored records of each block for the
// pool and slot. The whole batch is sent as one implicit transaction.
func (s *Store) UpsertBlockPriceChanges(ctx context.Context, pool, slot string, blocks []model.BlockPriceChanges) error {
	if len(blocks) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	queueBlocks(batch, pool, slot, blocks)

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func queueBlocks(batch *pgx.Batch, pool, slot string, blocks []model.BlockPriceChanges) {
	for _, b := range blocks {
		batch.Queue(`
			INSERT INTO pool_price_blocks (
				pool_address, slot_key, block_number, block_hash, block_timestamp, transaction_count, diagnostic, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			ON CONFLICT (pool_address, slot_key, block_number)
			DO UPDATE SET
				block_hash = EXCLUDED.block_hash,
				block_timestamp = EXCLUDED.block_timestamp,
				transaction_count = EXCLUDED.transaction_count,
				diagnostic = EXCLUDED.diagnostic,
				updated_at = now()
		`,
			pool,
			slot,
			int64(b.BlockNumber),
			b.BlockHash,
			b.BlockTimestamp,
			int64(b.TransactionCount),
			b.Diagnostic,
		)
		batch.Queue(`DELETE FROM pool_slot0_changes WHERE pool_address = $1 AND slot_key = $2 AND block_number = $3`,
			pool, slot, int64(b.BlockNumber))
		for i, c := range b.Slot0Changes {
			batch.Queue(`
				INSERT INTO pool_slot0_changes (
					pool_address, slot_key, block_number, position, tx_hash, sqrt_price_x96, tick
				) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
			`,
				pool,
				slot,
				int64(b.BlockNumber),
				i,
				c.TransactionHash,
				c.SqrtPriceX96,
				c.Tick,
			)
		}
	}
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var last int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(last), true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, lastProcessed uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(lastProcessed))
	return err
}

// Sink adapts Store to storage.Storage for one pool slot.
type Sink struct {
	Store *Store
	Pool  string
	Slot  string
}

func (s *Sink) PutBlockBatch(ctx context.Context, blocks []model.BlockPriceChanges) error {
	if err := s.Store.UpsertBlockPriceChanges(ctx, s.Pool, s.Slot, blocks); err != nil {
		return fmt.Errorf("upsert price changes: %w", err)
	}
	return nil
}
