package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/museumstyle/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "museumstyle.db"

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// AssetDB provides SQLite-based storage for image metadata and run history.
type AssetDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AssetDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AssetDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AssetDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AssetDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Path returns the database file path.
func (adb *AssetDB) Path() string {
	return adb.dbPath
}

// Close closes the database connection.
func (adb *AssetDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AssetDB) createTables() error {
	schema := `
	-- Assets describe every image stored in the image cache
	CREATE TABLE IF NOT EXISTS assets (
		name TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		page_url TEXT NOT NULL,
		image_url TEXT NOT NULL,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		artist TEXT NOT NULL DEFAULT '',
		copyright TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Runs record the outcome of each build
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		joined INTEGER NOT NULL DEFAULT 0,
		retained INTEGER NOT NULL DEFAULT 0,
		stylized INTEGER NOT NULL DEFAULT 0,
		output_path TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// RecordAsset inserts or updates the metadata of a downloaded image.
// It satisfies resolver.AssetRecorder.
func (adb *AssetDB) RecordAsset(ctx context.Context, asset model.Asset) error {
	fetchedAt := asset.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO assets (name, path, page_url, image_url, width, height, artist, copyright, description, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		path = excluded.path,
		page_url = excluded.page_url,
		image_url = excluded.image_url,
		width = excluded.width,
		height = excluded.height,
		artist = excluded.artist,
		copyright = excluded.copyright,
		description = excluded.description,
		fetched_at = excluded.fetched_at
	`

	_, err := adb.db.ExecContext(ctx, query,
		asset.Name,
		asset.Path,
		asset.PageURL,
		asset.ImageURL,
		asset.Width,
		asset.Height,
		asset.Credit.Artist,
		asset.Credit.Copyright,
		asset.Credit.Description,
		fetchedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record asset %s: %w", asset.Name, err)
	}
	return nil
}

// GetAsset retrieves the metadata of an image by its normalized name.
// ErrNotFound is returned when the image was never recorded.
func (adb *AssetDB) GetAsset(ctx context.Context, name string) (model.Asset, error) {
	query := `
	SELECT name, path, page_url, image_url, width, height, artist, copyright, description, fetched_at
	FROM assets
	WHERE name = ?
	`

	var asset model.Asset
	var fetchedAt string

	err := adb.db.QueryRowContext(ctx, query, name).Scan(
		&asset.Name,
		&asset.Path,
		&asset.PageURL,
		&asset.ImageURL,
		&asset.Width,
		&asset.Height,
		&asset.Credit.Artist,
		&asset.Credit.Copyright,
		&asset.Credit.Description,
		&fetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Asset{}, fmt.Errorf("asset %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}

	asset.Credit.SourceURL = asset.PageURL
	asset.FetchedAt = parseTimestamp(fetchedAt)
	return asset, nil
}

// CountAssets returns the number of recorded images.
func (adb *AssetDB) CountAssets(ctx context.Context) (int, error) {
	var count int
	if err := adb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return count, nil
}

// ClearAssets removes every asset record and returns how many were removed.
func (adb *AssetDB) ClearAssets(ctx context.Context) (int64, error) {
	result, err := adb.db.ExecContext(ctx, "DELETE FROM assets")
	if err != nil {
		return 0, fmt.Errorf("failed to clear assets: %w", err)
	}
	return result.RowsAffected()
}

// Run is a stored pipeline run.
type Run struct {
	// ID is the unique identifier of the run.
	ID string

	// Timestamp is when the run finished.
	Timestamp time.Time

	// Joined is the number of paintings matched to a museum.
	Joined int

	// Retained is the number of entries written to the dataset.
	Retained int

	// Stylized is the number of stylizer runs that exited successfully.
	Stylized int

	// OutputPath is the dataset file written by the run.
	OutputPath string
}

// SaveRun stores a run. An empty ID is replaced by a new random UUID and a
// zero timestamp by the current time. The stored run is returned.
func (adb *AssetDB) SaveRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	query := `
	INSERT INTO runs (id, timestamp, joined, retained, stylized, output_path)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := adb.db.ExecContext(ctx, query,
		run.ID,
		run.Timestamp.UTC().Format(time.RFC3339Nano),
		run.Joined,
		run.Retained,
		run.Stylized,
		run.OutputPath,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to save run: %w", err)
	}
	return run, nil
}

// ListRuns returns stored runs, newest first. A limit of zero or less returns
// every run.
func (adb *AssetDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, timestamp, joined, retained, stylized, output_path
	FROM runs
	ORDER BY timestamp DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var timestamp string
		if err := rows.Scan(&run.ID, &timestamp, &run.Joined, &run.Retained, &run.Stylized, &run.OutputPath); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = parseTimestamp(timestamp)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
