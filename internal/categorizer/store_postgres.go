package categorizer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxDB is the subset of *pgxpool.Pool the store uses.
type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore keeps a shared vocabulary in PostgreSQL.
type PostgresStore struct {
	db pgxDB
}

// NewPostgresStore wraps an open pool or connection. The table must exist;
// see Migrate.
func NewPostgresStore(db pgxDB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects a pool and ensures the table exists. The returned
// pool must be closed by the caller.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool, nil
}

// Migrate creates the vocabulary table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS vendor_vocabulary (
			position INTEGER PRIMARY KEY,
			merchant TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create vocabulary table: %w", err)
	}
	return nil
}

// Load returns the entries in insertion order.
func (s *PostgresStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `SELECT merchant, category FROM vendor_vocabulary ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query vocabulary: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Merchant, &e.Category); err != nil {
			return nil, fmt.Errorf("scan vocabulary: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save replaces every entry inside one transaction.
func (s *PostgresStore) Save(ctx context.Context, entries []Entry) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := replaceEntries(ctx, tx, entries); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit vocabulary: %w", err)
	}
	return nil
}

func replaceEntries(ctx context.Context, tx pgx.Tx, entries []Entry) error {
	if _, err := tx.Exec(ctx, `DELETE FROM vendor_vocabulary`); err != nil {
		return fmt.Errorf("clear vocabulary: %w", err)
	}
	for i, e := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO vendor_vocabulary (position, merchant, category) VALUES ($1, $2, $3)`,
			i, e.Merchant, e.Category)
		if err != nil {
			return fmt.Errorf("insert %q: %w", e.Merchant, err)
		}
	}
	return nil
}
