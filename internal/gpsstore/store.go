package gpsstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages GPS record persistence backed by SQLite. It is safe for
// concurrent use; distinct workers only ever touch distinct file paths, but
// the connection pool and upsert SQL make even overlapping writes safe.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the GPS database at the given path and
// verifies the schema.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure database directory: %w", err)
		}
	}

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
	if err := store.initSchema(context.Background()); err != nil {
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

// Path returns the on-disk location backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

const recordColumns = "file_path, latitude, longitude, altitude, bearing, accuracy, source, confidence, details_json, created_at, updated_at"

// Get fetches the record for a file path, or nil when none is stored.
func (s *Store) Get(ctx context.Context, filePath string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM gps_records WHERE file_path = ?`, filePath)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gps record: %w", err)
	}
	return rec, nil
}

// Upsert stores a resolved fix for a file. An existing record is replaced
// only when the new source strictly outranks the stored one; lower- or
// equal-priority resolutions leave the stored record untouched. The returned
// boolean reports whether a write happened.
func (s *Store) Upsert(ctx context.Context, filePath string, coords Coordinates, source Source, details map[string]any) (bool, error) {
	if filePath == "" {
		return false, errors.New("file path is empty")
	}
	if !source.Valid() {
		return false, fmt.Errorf("unrecognized source %q", source)
	}

	existing, err := s.Get(ctx, filePath)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	var detailsJSON any
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			return false, fmt.Errorf("marshal details: %w", err)
		}
		detailsJSON = string(data)
	}

	if existing == nil {
		confidence := ConfidenceForSource(source, "")
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO gps_records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			filePath,
			coords.Latitude,
			coords.Longitude,
			nullableFloat(coords.Altitude),
			nullableFloat(coords.Bearing),
			nullableFloat(coords.Accuracy),
			string(source),
			string(confidence),
			detailsJSON,
			timestamp,
			timestamp,
		)
		if err != nil {
			return false, fmt.Errorf("insert gps record: %w", err)
		}
		return true, nil
	}

	if source.Rank() <= existing.Source.Rank() {
		return false, nil
	}

	confidence := ConfidenceForSource(source, existing.Confidence)
	_, err = s.db.ExecContext(ctx,
		`UPDATE gps_records
         SET latitude = ?, longitude = ?, altitude = ?, bearing = ?, accuracy = ?,
             source = ?, confidence = ?, details_json = ?, updated_at = ?
         WHERE file_path = ?`,
		coords.Latitude,
		coords.Longitude,
		nullableFloat(coords.Altitude),
		nullableFloat(coords.Bearing),
		nullableFloat(coords.Accuracy),
		string(source),
		string(confidence),
		detailsJSON,
		timestamp,
		filePath,
	)
	if err != nil {
		return false, fmt.Errorf("update gps record: %w", err)
	}
	return true, nil
}

// List returns all records ordered by file path.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM gps_records ORDER BY file_path`)
	if err != nil {
		return nil, fmt.Errorf("list gps records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Remove deletes the record for a file path.
func (s *Store) Remove(ctx context.Context, filePath string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gps_records WHERE file_path = ?`, filePath)
	if err != nil {
		return false, fmt.Errorf("delete gps record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gps_records`)
	if err != nil {
		return 0, fmt.Errorf("clear gps records: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns record counts grouped by source.
func (s *Store) Stats(ctx context.Context) (map[Source]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(1) FROM gps_records GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("gps store stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Source]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		stats[Source(source)] = count
	}
	return stats, rows.Err()
}

// ExportJSON serializes every record as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context) ([]byte, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode gps records: %w", err)
	}
	return data, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		filePath    string
		latitude    float64
		longitude   float64
		altitude    sql.NullFloat64
		bearing     sql.NullFloat64
		accuracy    sql.NullFloat64
		source      string
		confidence  string
		detailsJSON sql.NullString
		createdRaw  string
		updatedRaw  string
	)

	if err := scanner.Scan(
		&filePath,
		&latitude,
		&longitude,
		&altitude,
		&bearing,
		&accuracy,
		&source,
		&confidence,
		&detailsJSON,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	rec := &Record{
		FilePath: filePath,
		Coordinates: Coordinates{
			Latitude:  latitude,
			Longitude: longitude,
			Altitude:  floatPtr(altitude),
			Bearing:   floatPtr(bearing),
			Accuracy:  floatPtr(accuracy),
		},
		Source:     Source(source),
		Confidence: Confidence(confidence),
	}
	if detailsJSON.Valid && detailsJSON.String != "" {
		if err := json.Unmarshal([]byte(detailsJSON.String), &rec.Details); err != nil {
			return nil, fmt.Errorf("decode details for %s: %w", filePath, err)
		}
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		rec.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		rec.UpdatedAt = updated
	}
	return rec, nil
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func floatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}
