package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sosanalyzer/internal/model"
)

// FileName is the database file name inside the directory passed to Open.
const FileName = "results.db"

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// ResultDB stores analysis results in SQLite.
type ResultDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures ResultDB behavior.
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

// Open opens or creates the result database in dbDir.
func Open(dbDir string, opts Options) (*ResultDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
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

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResultDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *ResultDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

func (rdb *ResultDB) createTables() error {
	schema := `
	-- One row per result dump
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		host TEXT,
		workdir TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		total_findings INTEGER NOT NULL DEFAULT 0,
		results_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_host ON runs(host);
	CREATE INDEX IF NOT EXISTS idx_runs_generated ON runs(generated_at);

	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		rule TEXT NOT NULL,
		analyzer TEXT NOT NULL,
		severity INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		recommendation TEXT,
		file TEXT,
		line INTEGER,
		match_text TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_findings_rule ON findings(rule);

	CREATE TABLE IF NOT EXISTS facts (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		source TEXT,
		PRIMARY KEY (run_id, name)
	);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary describes a stored run.
type RunSummary struct {
	RunID         string
	Host          string
	WorkDir       string
	GeneratedAt   time.Time
	TotalFindings int
}

// SaveResults stores results as a new run in a single transaction.
func (rdb *ResultDB) SaveResults(ctx context.Context, results *model.Results) (err error) {
	if results.RunID == "" {
		return errors.New("results have no run id")
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to serialize results: %w", err)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, host, workdir, generated_at, total_findings, results_json)
	VALUES (?, ?, ?, ?, ?, ?)`,
		results.RunID,
		results.Host,
		results.WorkDir,
		results.GeneratedAt.UTC().Format(time.RFC3339Nano),
		results.TotalFindings(),
		string(resultsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range results.Findings {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO findings (run_id, rule, analyzer, severity, title, description, recommendation, file, line, match_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			results.RunID, f.Rule, f.Analyzer, int(f.Severity), f.Title,
			f.Description, f.Recommendation, f.File, f.Line, f.Match,
		)
		if err != nil {
			return fmt.Errorf("failed to insert finding %s: %w", f.Rule, err)
		}
	}

	for _, f := range results.Facts {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO facts (run_id, name, value, source) VALUES (?, ?, ?, ?)`,
			results.RunID, f.Name, f.Value, f.Source,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fact %s: %w", f.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	return nil
}

// ListRuns returns every stored run, newest first.
func (rdb *ResultDB) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT run_id, COALESCE(host, ''), workdir, generated_at, total_findings
	FROM runs
	ORDER BY generated_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r         RunSummary
			generated string
		)
		if err := rows.Scan(&r.RunID, &r.Host, &r.WorkDir, &generated, &r.TotalFindings); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.GeneratedAt, err = time.Parse(time.RFC3339Nano, generated)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run time %q: %w", generated, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FindingsForRun returns the findings of a run, most severe first.
func (rdb *ResultDB) FindingsForRun(ctx context.Context, runID string) ([]model.Finding, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT rule, analyzer, severity, title, COALESCE(description, ''), COALESCE(recommendation, ''),
		COALESCE(file, ''), COALESCE(line, 0), COALESCE(match_text, '')
	FROM findings
	WHERE run_id = ?
	ORDER BY severity DESC, rule, file, line`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []model.Finding
	for rows.Next() {
		var (
			f   model.Finding
			sev int
		)
		if err := rows.Scan(&f.Rule, &f.Analyzer, &sev, &f.Title, &f.Description,
			&f.Recommendation, &f.File, &f.Line, &f.Match); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Severity = model.Severity(sev)
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// LoadResults returns the results stored for runID.
func (rdb *ResultDB) LoadResults(ctx context.Context, runID string) (*model.Results, error) {
	var resultsJSON string
	err := rdb.db.QueryRowContext(ctx, `SELECT results_json FROM runs WHERE run_id = ?`, runID).Scan(&resultsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	var results model.Results
	if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
		return nil, fmt.Errorf("failed to deserialize results: %w", err)
	}
	return &results, nil
}
