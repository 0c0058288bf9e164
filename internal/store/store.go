package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sheetwatch/internal/config"
)

// Store manages analysis persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the analysis database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.DatabasePath
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.migrateLegacyColumns(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// InsertAnalysis creates an analysis record together with its metadata entries
// in one transaction. A (filename, file_hash) collision returns
// ErrDuplicateAnalysis and leaves the store unchanged.
func (s *Store) InsertAnalysis(ctx context.Context, filename, analysisText, vendorCode, fileHash string, metadata map[string]any) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO analyses (filename, vendor_code, analysis_text, file_hash, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		filename,
		nullableString(vendorCode),
		analysisText,
		nullableString(fileHash),
		StatusFinish,
		timestamp,
		timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateAnalysis, filename)
		}
		return 0, fmt.Errorf("insert analysis: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for key, value := range metadata {
		encoded, err := encodeMetadataValue(value)
		if err != nil {
			return 0, fmt.Errorf("encode metadata %q: %w", key, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR REPLACE INTO analysis_metadata (analysis_id, key, value) VALUES (?, ?, ?)`,
			id, key, encoded,
		); err != nil {
			return 0, fmt.Errorf("insert metadata %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return id, nil
}

// GetByID fetches an analysis record by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id)
	record, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return record, nil
}

// GetByFilename returns the most recent record for a filename, or nil when
// the filename has never been analyzed.
func (s *Store) GetByFilename(ctx context.Context, filename string) (*Analysis, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE filename = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		filename,
	)
	record, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get by filename: %w", err)
	}
	return record, nil
}

// List returns records ordered newest first. A non-positive limit returns all
// remaining records after the offset.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*Analysis, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+analysisColumns+` FROM analyses ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()
	return collectAnalyses(rows)
}

// SearchByVendor returns all records matching a vendor code, newest first.
func (s *Store) SearchByVendor(ctx context.Context, vendorCode string) ([]*Analysis, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE vendor_code = ? ORDER BY created_at DESC, id DESC`,
		vendorCode,
	)
	if err != nil {
		return nil, fmt.Errorf("search by vendor: %w", err)
	}
	defer rows.Close()
	return collectAnalyses(rows)
}

// UpdateAnalysis applies a partial update and touches the update timestamp.
func (s *Store) UpdateAnalysis(ctx context.Context, id int64, update AnalysisUpdate) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	setClauses := "updated_at = ?"
	args := []any{timestamp}
	if update.AnalysisText != nil {
		setClauses += ", analysis_text = ?"
		args = append(args, *update.AnalysisText)
	}
	if update.VendorCode != nil {
		setClauses += ", vendor_code = ?"
		args = append(args, nullableString(*update.VendorCode))
	}
	args = append(args, id)

	res, err := tx.ExecContext(ctx, `UPDATE analyses SET `+setClauses+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update analysis: no record with id %d", id)
	}

	for key, value := range update.Metadata {
		encoded, err := encodeMetadataValue(value)
		if err != nil {
			return fmt.Errorf("encode metadata %q: %w", key, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR REPLACE INTO analysis_metadata (analysis_id, key, value) VALUES (?, ?, ?)`,
			id, key, encoded,
		); err != nil {
			return fmt.Errorf("upsert metadata %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// Delete removes an analysis record; metadata and checklist items cascade.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete analysis: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteByFilename removes every record for a filename. It returns the number
// of records removed so callers can report reanalysis scope.
func (s *Store) DeleteByFilename(ctx context.Context, filename string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE filename = ?`, filename)
	if err != nil {
		return 0, fmt.Errorf("delete by filename: %w", err)
	}
	return res.RowsAffected()
}

const analysisColumns = "id, filename, vendor_code, analysis_text, file_hash, status, created_at, updated_at"

func scanAnalysis(scanner interface{ Scan(dest ...any) error }) (*Analysis, error) {
	var (
		id         int64
		filename   string
		vendorCode sql.NullString
		text       string
		fileHash   sql.NullString
		status     string
		createdRaw string
		updatedRaw string
	)

	if err := scanner.Scan(&id, &filename, &vendorCode, &text, &fileHash, &status, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	record := &Analysis{
		ID:           id,
		Filename:     filename,
		VendorCode:   vendorCode.String,
		AnalysisText: text,
		FileHash:     fileHash.String,
		Status:       status,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func collectAnalyses(rows *sql.Rows) ([]*Analysis, error) {
	var records []*Analysis
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
