package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const sqliteCheckpointsSchemaV1 = `
CREATE TABLE IF NOT EXISTS checkpoints (
    id TEXT PRIMARY KEY,
    thread_id TEXT NOT NULL,
    step INTEGER NOT NULL,
    node TEXT NOT NULL DEFAULT '',
    next TEXT NOT NULL DEFAULT '',
    payload BLOB,
    created_at_ms INTEGER NOT NULL,
    UNIQUE(thread_id, step)
);
`

// SQLiteStore persists checkpoints in a SQLite database, one row per step.
type SQLiteStore struct {
	mu     sync.Mutex
	dsn    string
	db     *sql.DB
	closed bool
}

// NewSQLiteStore opens (creating if needed) the database at dsn, e.g. "convo.db" or
// "file:convo.db?_busy_timeout=5000".
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite checkpoint store: empty dsn")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{dsn: dsn, db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug().Str("dsn", dsn).Msg("opened sqlite checkpoint store")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(sqliteCheckpointsSchemaV1); err != nil {
		return fmt.Errorf("sqlite checkpoint store: migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ensureOpen() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, cp *Checkpoint) error {
	if cp.ThreadID == "" {
		return ErrEmptyThreadID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var latest sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(step) FROM checkpoints WHERE thread_id = ?`, cp.ThreadID,
	).Scan(&latest); err != nil {
		return err
	}

	id := uuid.NewString()
	step := int(latest.Int64) + 1
	createdAt := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO checkpoints (id, thread_id, step, node, next, payload, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, cp.ThreadID, step, cp.Node, cp.Next, cp.Payload, createdAt.UnixMilli(),
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	cp.ID = id
	cp.Step = step
	cp.CreatedAt = createdAt
	log.Debug().
		Str("thread_id", cp.ThreadID).
		Int("step", step).
		Str("node", cp.Node).
		Msg("checkpoint saved")
	return nil
}

func (s *SQLiteStore) Latest(ctx context.Context, threadID string) (*Checkpoint, bool, error) {
	if threadID == "" {
		return nil, false, ErrEmptyThreadID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return nil, false, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, thread_id, step, node, next, payload, created_at_ms
		 FROM checkpoints WHERE thread_id = ? ORDER BY step DESC LIMIT 1`, threadID)
	cp, err := scanCheckpoint(row)
	switch err {
	case nil:
		return cp, true, nil
	case sql.ErrNoRows:
		return nil, false, nil
	default:
		return nil, false, err
	}
}

func (s *SQLiteStore) List(ctx context.Context, threadID string) ([]*Checkpoint, error) {
	if threadID == "" {
		return nil, ErrEmptyThreadID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, thread_id, step, node, next, payload, created_at_ms
		 FROM checkpoints WHERE thread_id = ? ORDER BY step ASC`, threadID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make([]*Checkpoint, 0)
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Threads(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT thread_id FROM checkpoints ORDER BY thread_id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(row rowScanner) (*Checkpoint, error) {
	var (
		cp        Checkpoint
		createdAt int64
	)
	if err := row.Scan(
		&cp.ID, &cp.ThreadID, &cp.Step, &cp.Node, &cp.Next, &cp.Payload, &createdAt,
	); err != nil {
		return nil, err
	}
	cp.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &cp, nil
}

var _ Store = (*SQLiteStore)(nil)
