package db

import (
	"database/sql"
	"time"

	"github.com/rsclarke/citybus/internal/models"
)

// CreateFetch inserts a downloaded archive with a pending extraction and
// returns its ID.
func CreateFetch(d *sql.DB, f *models.Fetch) (int64, error) {
	fetchedAt := f.FetchedAt
	if fetchedAt == 0 {
		fetchedAt = time.Now().Unix()
	}
	result, err := d.Exec(
		"INSERT INTO fetches (name, current_version, archive_path, size, sha256, fetched_at, extraction_status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		f.Name, f.CurrentVersion, f.ArchivePath, f.Size, f.SHA256, fetchedAt, models.ExtractionPending,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// FinishExtraction stores the outcome of the extraction for a fetch.
// A nil extractErr marks the extraction as successful.
func FinishExtraction(d *sql.DB, id int64, extractErr error) error {
	status := models.ExtractionOK
	var msg *string
	if extractErr != nil {
		status = models.ExtractionFailed
		s := extractErr.Error()
		msg = &s
	}
	_, err := d.Exec(
		"UPDATE fetches SET extraction_status = ?, extraction_error = ?, finished_at = ? WHERE id = ?",
		status, msg, time.Now().Unix(), id,
	)
	return err
}

const fetchColumns = "id, name, current_version, archive_path, size, sha256, fetched_at, extraction_status, extraction_error, finished_at"

// ListFetches returns the most recent fetches first. A limit of zero or
// less returns every row.
func ListFetches(d *sql.DB, limit int) ([]models.Fetch, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.Query(
		"SELECT "+fetchColumns+" FROM fetches ORDER BY fetched_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fetches []models.Fetch
	for rows.Next() {
		f, err := scanFetch(rows)
		if err != nil {
			return nil, err
		}
		fetches = append(fetches, *f)
	}
	return fetches, rows.Err()
}

// LatestFetch returns the most recent fetch of name, or nil if there is none.
func LatestFetch(d *sql.DB, name string) (*models.Fetch, error) {
	row := d.QueryRow(
		"SELECT "+fetchColumns+" FROM fetches WHERE name = ? ORDER BY fetched_at DESC, id DESC LIMIT 1",
		name,
	)
	f, err := scanFetch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFetch(s scanner) (*models.Fetch, error) {
	var f models.Fetch
	err := s.Scan(&f.ID, &f.Name, &f.CurrentVersion, &f.ArchivePath, &f.Size, &f.SHA256,
		&f.FetchedAt, &f.ExtractionStatus, &f.ExtractionError, &f.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
