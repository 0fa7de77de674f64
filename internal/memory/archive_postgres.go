package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solace-labs/solace/internal/reliability"
)

// PostgresArchive persists transcript records in PostgreSQL.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

func NewPostgresArchive(ctx context.Context, databaseURL string) (*PostgresArchive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresArchive{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transcript_records (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			escalated BOOLEAN NOT NULL DEFAULT FALSE,
			pii_redacted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transcript_records_session_created ON transcript_records (session_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (a *PostgresArchive) Save(ctx context.Context, record Record) error {
	record = redactRecord(record)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	// Transcript writes are best-effort from the turn path; ride out brief
	// connection blips instead of dropping the record.
	err := reliability.Retry(ctx, 3, 50*time.Millisecond, 400*time.Millisecond, func() error {
		_, execErr := a.pool.Exec(ctx,
			`INSERT INTO transcript_records (id, session_id, kind, role, content, category, escalated, pii_redacted, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			record.ID,
			record.SessionID,
			record.Kind,
			record.Role,
			record.Content,
			record.Category,
			record.Escalated,
			record.PIIRedacted,
			record.CreatedAt,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (a *PostgresArchive) History(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.pool.Query(ctx,
		`SELECT id, session_id, kind, role, content, category, escalated, pii_redacted, created_at
		 FROM transcript_records WHERE session_id=$1 ORDER BY created_at DESC LIMIT $2`,
		sessionID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Kind, &r.Role, &r.Content, &r.Category, &r.Escalated, &r.PIIRedacted, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	// Reverse into chronological order for display.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}

func (a *PostgresArchive) Close() error {
	a.pool.Close()
	return nil
}
