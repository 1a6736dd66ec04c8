package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// DefaultMuseumLimit is the number of most viewed museums read from the store.
const DefaultMuseumLimit = 1000

// MuseumRow is a raw museum page.
type MuseumRow struct {
	Title     string
	Wikitext  string
	ViewCount int64

	// Location is the JSON text of the coordinate property. It is invalid
	// when the page has no structured data.
	Location sql.NullString
}

// PaintingRow is a raw painting page.
type PaintingRow struct {
	Title     string
	Wikitext  string
	ViewCount int64
}

// Store is the interface the loaders read raw rows from.
type Store interface {
	MuseumRows(ctx context.Context) ([]MuseumRow, error)
	PaintingRows(ctx context.Context) ([]PaintingRow, error)
}

// SQLStore reads rows through database/sql.
type SQLStore struct {
	db          *sql.DB
	dialect     Dialect
	museumLimit int
	logger      *slog.Logger
}

// Option configures a SQLStore.
type Option func(*SQLStore)

// WithLogger sets the logger used for query diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SQLStore) {
		s.logger = logger
	}
}

// WithMuseumLimit overrides DefaultMuseumLimit.
func WithMuseumLimit(limit int) Option {
	return func(s *SQLStore) {
		if limit > 0 {
			s.museumLimit = limit
		}
	}
}

// Open connects to the store described by dialectName and dsn and verifies
// the connection with a ping.
func Open(ctx context.Context, dialectName, dsn string, opts ...Option) (*SQLStore, error) {
	dialect, err := DialectFor(dialectName)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	if dialect.Name == SQLite.Name {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	return New(db, dialect, opts...), nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, dialect Dialect, opts ...Option) *SQLStore {
	s := &SQLStore{
		db:          db,
		dialect:     dialect,
		museumLimit: DefaultMuseumLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Close closes the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// MuseumRows returns the most viewed museum pages, most viewed first.
func (s *SQLStore) MuseumRows(ctx context.Context) ([]MuseumRow, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.MuseumQuery, s.museumLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query museums: %w", err)
	}
	defer rows.Close()

	var result []MuseumRow
	for rows.Next() {
		var (
			r        MuseumRow
			wikitext sql.NullString
		)
		if err := rows.Scan(&r.Title, &wikitext, &r.ViewCount, &r.Location); err != nil {
			return nil, fmt.Errorf("failed to scan museum row: %w", err)
		}
		r.Wikitext = wikitext.String
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate museum rows: %w", err)
	}

	s.logger.Debug("museum rows loaded", "dialect", s.dialect.Name, "count", len(result))
	return result, nil
}

// PaintingRows returns the pages categorized as paintings.
func (s *SQLStore) PaintingRows(ctx context.Context) ([]PaintingRow, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.PaintingQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query paintings: %w", err)
	}
	defer rows.Close()

	var result []PaintingRow
	for rows.Next() {
		var (
			r        PaintingRow
			wikitext sql.NullString
		)
		if err := rows.Scan(&r.Title, &wikitext, &r.ViewCount); err != nil {
			return nil, fmt.Errorf("failed to scan painting row: %w", err)
		}
		r.Wikitext = wikitext.String
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate painting rows: %w", err)
	}

	s.logger.Debug("painting rows loaded", "dialect", s.dialect.Name, "count", len(result))
	return result, nil
}
