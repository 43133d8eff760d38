package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresHistory stores session turns in a sequenced table. The bigserial
// column preserves append order; the transactional insert keeps a dispatch's
// user/assistant pair adjacent.
type PostgresHistory struct {
	pool *pgxpool.Pool
}

const sessionTurnsSchema = `
CREATE TABLE IF NOT EXISTS session_turns (
    seq        BIGSERIAL PRIMARY KEY,
    session_id TEXT NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS session_turns_session_idx ON session_turns (session_id, seq);
`

func NewPostgresHistory(ctx context.Context, dsn string) (*PostgresHistory, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &PostgresHistory{pool: pool}, nil
}

// CreateSchema bootstraps the session_turns table.
func (s *PostgresHistory) CreateSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, sessionTurnsSchema)
	return err
}

func (s *PostgresHistory) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	for _, t := range turns {
		if _, err := tx.Exec(ctx,
			`INSERT INTO session_turns (session_id, role, content) VALUES ($1, $2, $3)`,
			sessionID, t.Role, t.Content); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresHistory) History(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role, content FROM session_turns WHERE session_id = $1 ORDER BY seq`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Close releases the connection pool.
func (s *PostgresHistory) Close() { s.pool.Close() }

var _ HistoryStore = (*PostgresHistory)(nil)
