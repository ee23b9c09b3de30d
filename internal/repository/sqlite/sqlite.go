package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"netintent/internal/domain"
	"netintent/internal/repository"

	_ "modernc.org/sqlite"
)

// DefaultRecentLimit caps Recent when no limit is given
const DefaultRecentLimit = 50

// Repository is the sync journal backed by SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Journal = (*Repository)(nil)

// New opens or creates the journal database at dbPath
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
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
	CREATE TABLE IF NOT EXISTS sync_outcomes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		device TEXT NOT NULL,
		path TEXT,
		decision TEXT NOT NULL,
		revision_token TEXT,
		stage TEXT NOT NULL,
		success INTEGER NOT NULL DEFAULT 0,
		dry_run INTEGER NOT NULL DEFAULT 0,
		commit_ref TEXT,
		message TEXT,
		diff TEXT,
		line_count INTEGER NOT NULL DEFAULT 0,
		error_kind TEXT,
		error JSON,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sync_outcomes_device ON sync_outcomes(device);
	CREATE INDEX IF NOT EXISTS idx_sync_outcomes_stage ON sync_outcomes(stage);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Record appends an outcome to the journal
func (r *Repository) Record(ctx context.Context, outcome domain.SyncOutcome) error {
	args, err := outcomeInsertArgs(&outcome)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sync_outcomes (`+outcomeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}
	return nil
}

// Get returns the outcome with the given id, or nil if it is not recorded
func (r *Repository) Get(ctx context.Context, id string) (*domain.SyncOutcome, error) {
	var row outcomeRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+outcomeColumns+` FROM sync_outcomes WHERE id = ?
	`, id).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome: %w", err)
	}
	return row.toDomain()
}

// Recent returns the latest outcomes, newest first. An empty device returns
// outcomes for all devices.
func (r *Repository) Recent(ctx context.Context, device string, limit int) ([]domain.SyncOutcome, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `SELECT ` + outcomeColumns + ` FROM sync_outcomes`
	args := []interface{}{}
	if device != "" {
		query += ` WHERE device = ?`
		args = append(args, device)
	}
	query += ` ORDER BY seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []domain.SyncOutcome{}
	for rows.Next() {
		var row outcomeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcome, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, *outcome)
	}
	return outcomes, rows.Err()
}

// CountByStage returns how many attempts ended in each stage
func (r *Repository) CountByStage(ctx context.Context) (map[domain.SyncStage]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT stage, COUNT(*) FROM sync_outcomes GROUP BY stage`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.SyncStage]int)
	for rows.Next() {
		var (
			stage string
			n     int
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[domain.SyncStage(stage)] = n
	}
	return counts, rows.Err()
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
