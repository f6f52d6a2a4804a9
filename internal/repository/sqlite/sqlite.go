package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"irisdash/internal/domain"

	_ "modernc.org/sqlite"
)

const metaDataset = "dataset"

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository. dbPath may be ":memory:".
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stage TEXT NOT NULL,
		species JSON NOT NULL,
		x_column TEXT NOT NULL,
		y_column TEXT NOT NULL,
		x_min REAL NOT NULL,
		x_max REAL NOT NULL,
		y_min REAL NOT NULL,
		y_max REAL NOT NULL,
		regression INTEGER NOT NULL DEFAULT 0,
		points INTEGER NOT NULL DEFAULT 0,
		fit JSON,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_interactions_created ON interactions(created_at);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return err
	}

	return r.addColumnIfNotExists("interactions", "fit_error", "TEXT")
}

// addColumnIfNotExists adds a column to tables created by older versions
func (r *Repository) addColumnIfNotExists(table, column, decl string) error {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &primaryKey); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	return err
}

// RecordInteraction stores an interaction and sets its ID. A zero CreatedAt
// is replaced with the current time.
func (r *Repository) RecordInteraction(ctx context.Context, in *domain.Interaction) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}

	args, err := interactionInsertArgs(in)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO interactions (`+interactionInsertColumns+`)
		VALUES (`+interactionInsertPlaceholders+`)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read interaction id: %w", err)
	}
	in.ID = id
	return nil
}

// ListInteractions returns the most recent interactions, newest first. A
// limit of zero or less returns all of them.
func (r *Repository) ListInteractions(ctx context.Context, limit int) ([]domain.Interaction, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+interactionColumns+`
		FROM interactions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	out := []domain.Interaction{}
	for rows.Next() {
		var row interactionRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		in, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interactions: %w", err)
	}

	return out, nil
}

// CountInteractions returns the number of stored interactions
func (r *Repository) CountInteractions(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}
	return n, nil
}

// PruneInteractions deletes all but the newest keep interactions and returns
// the number removed.
func (r *Repository) PruneInteractions(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM interactions
		WHERE id NOT IN (SELECT id FROM interactions ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune interactions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned count: %w", err)
	}
	return n, nil
}

// SaveDatasetInfo stores metadata about the loaded dataset
func (r *Repository) SaveDatasetInfo(ctx context.Context, info domain.DatasetInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset info: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, metaDataset, string(data)); err != nil {
		return fmt.Errorf("failed to store dataset info: %w", err)
	}

	return nil
}

// GetDatasetInfo returns the stored dataset metadata, or nil if none was saved
func (r *Repository) GetDatasetInfo(ctx context.Context) (*domain.DatasetInfo, error) {
	var value sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM metadata WHERE key = ?
	`, metaDataset).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset info: %w", err)
	}

	info := &domain.DatasetInfo{}
	if err := unmarshalJSONField(value, info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset info: %w", err)
	}
	return info, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
