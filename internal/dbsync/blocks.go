package dbsync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
)

const blockColumns = `block_no, hash, epoch_no, slot_no, time`

// BlockStore reads mainchain blocks from a db-sync style block table.
type BlockStore struct {
	db *sql.DB
}

// Open opens the SQLite block database at path.
func Open(ctx context.Context, path string) (*BlockStore, error) {
	db, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewBlockStore(db), nil
}

func NewBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db}
}

func (s *BlockStore) Close() error {
	return s.db.Close()
}

// PutBlocks inserts blocks, replacing any block stored under the same number.
func (s *BlockStore) PutBlocks(ctx context.Context, blocks ...block.MainchainBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO block (`+blockColumns+`) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(block_no) DO UPDATE SET
  hash = excluded.hash,
  epoch_no = excluded.epoch_no,
  slot_no = excluded.slot_no,
  time = excluded.time`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range blocks {
		if _, err := stmt.ExecContext(ctx,
			toInt64(b.Number), b.Hash[:], int64(b.Epoch), toInt64(uint64(b.Slot)), toInt64(b.Timestamp),
		); err != nil {
			return fmt.Errorf("insert block %d: %w", b.Number, err)
		}
	}
	return tx.Commit()
}

func (s *BlockStore) LatestBlock(ctx context.Context) (block.MainchainBlock, error) {
	return s.queryOne(ctx, `SELECT `+blockColumns+` FROM block ORDER BY block_no DESC LIMIT 1`)
}

func (s *BlockStore) BlockByHash(ctx context.Context, hash crypto.Hash) (block.MainchainBlock, error) {
	return s.queryOne(ctx, `SELECT `+blockColumns+` FROM block WHERE hash = ?`, hash[:])
}

func (s *BlockStore) BlockByNumber(ctx context.Context, n uint64) (block.MainchainBlock, error) {
	return s.queryOne(ctx, `SELECT `+blockColumns+` FROM block WHERE block_no = ?`, toInt64(n))
}

// BlocksByNumbers returns the blocks numbered in [from, to], ascending.
func (s *BlockStore) BlocksByNumbers(ctx context.Context, from, to uint64) ([]block.MainchainBlock, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM block WHERE block_no >= ? AND block_no <= ? ORDER BY block_no ASC`,
		toInt64(from), toInt64(to))
	if err != nil {
		return nil, fmt.Errorf("query blocks %d to %d: %w", from, to, err)
	}
	defer rows.Close()

	var blocks []block.MainchainBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// HighestBlockInWindow returns the highest block satisfying every bound of q.
func (s *BlockStore) HighestBlockInWindow(ctx context.Context, q block.WindowQuery) (block.MainchainBlock, error) {
	return s.queryOne(ctx, `
SELECT `+blockColumns+` FROM block
WHERE block_no <= ?
  AND slot_no >= ? AND slot_no <= ?
  AND time >= ? AND time <= ?
ORDER BY block_no DESC
LIMIT 1`,
		toInt64(q.MaxNumber),
		toInt64(uint64(q.MinSlot)), toInt64(uint64(q.MaxSlot)),
		toInt64(q.MinTimestamp), toInt64(q.MaxTimestamp),
	)
}

func (s *BlockStore) queryOne(ctx context.Context, query string, args ...any) (block.MainchainBlock, error) {
	b, err := scanBlock(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return block.MainchainBlock{}, block.ErrBlockNotFound
	}
	return b, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlock(row scanner) (block.MainchainBlock, error) {
	var (
		number, epoch, slot, ts int64
		hash                    []byte
	)
	if err := row.Scan(&number, &hash, &epoch, &slot, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return block.MainchainBlock{}, err
		}
		return block.MainchainBlock{}, fmt.Errorf("scan block: %w", err)
	}
	h, err := crypto.HashFromBytes(hash)
	if err != nil {
		return block.MainchainBlock{}, fmt.Errorf("block %d hash: %w", number, err)
	}
	return block.MainchainBlock{
		Number:    uint64(number),
		Hash:      h,
		Epoch:     mcepoch.Epoch(epoch),
		Slot:      mcepoch.Slot(slot),
		Timestamp: uint64(ts),
	}, nil
}

// toInt64 clamps v to the SQLite integer range.
func toInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
