package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/models"
)

// RunInfo summarizes one recorded crawl run.
type RunInfo struct {
	RunID           int64
	SeedURL         string
	StartedAt       time.Time
	FinishedAt      *time.Time
	TotalDiscovered int
	TotalDownloaded int
	TotalErrors     int
	ManifestPath    string
}

// InsertRun records the start of a crawl run and returns its run_id.
func (db *DB) InsertRun(seedURL string) (int64, error) {
	result, err := db.Exec(`INSERT INTO runs (seed_url) VALUES (?)`, seedURL)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// FinishRun stores the final counts and manifest path for a run.
func (db *DB) FinishRun(runID int64, discovered, downloaded, errors int, manifestPath string) error {
	_, err := db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP,
		    total_discovered = ?, total_downloaded = ?, total_errors = ?,
		    manifest_path = ?
		WHERE run_id = ?
	`, discovered, downloaded, errors, manifestPath, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// InsertForm records one terminal-state descriptor for a run and returns
// its form_id.
func (db *DB) InsertForm(runID int64, form models.FormDescriptor, filePath string, sizeBytes int64) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO forms (run_id, form_number, title, url, category, status, sha256, error, file_path, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?)
	`, runID, form.Identifier, form.Title, form.URL, form.Category,
		form.Status.String(), form.Digest, form.Error, filePath, sizeBytes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert form: %w", err)
	}

	formID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get form ID: %w", err)
	}
	return formID, nil
}

// RecordFetchAttempt records one HTTP attempt against a form.
func (db *DB) RecordFetchAttempt(formID int64, statusCode int, errText string, success bool) error {
	_, err := db.Exec(`
		INSERT INTO fetch_attempts (form_id, status_code, error, success)
		VALUES (?, NULLIF(?, 0), NULLIF(?, ''), ?)
	`, formID, statusCode, errText, success)
	if err != nil {
		return fmt.Errorf("failed to record fetch attempt: %w", err)
	}
	return nil
}

// InsertEnrichment stores enrichment output (or its failure) for a form.
// Keywords are stored as a JSON array. Upserts so a rerun within the same
// run replaces the prior row.
func (db *DB) InsertEnrichment(formID int64, summary, language string, keywords []string, errText string) error {
	var keywordsJSON string
	if len(keywords) > 0 {
		data, err := json.Marshal(keywords)
		if err != nil {
			return fmt.Errorf("failed to marshal keywords: %w", err)
		}
		keywordsJSON = string(data)
	}

	_, err := db.Exec(`
		INSERT INTO enrichments (form_id, summary, language, keywords, error)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''))
		ON CONFLICT(form_id) DO UPDATE SET
			summary = excluded.summary,
			language = excluded.language,
			keywords = excluded.keywords,
			error = excluded.error
	`, formID, summary, language, keywordsJSON, errText)
	if err != nil {
		return fmt.Errorf("failed to insert enrichment: %w", err)
	}
	return nil
}

// ListRuns returns recorded runs, most recent first, up to limit.
func (db *DB) ListRuns(limit int) ([]RunInfo, error) {
	rows, err := db.Query(`
		SELECT run_id, seed_url, started_at, finished_at,
		       total_discovered, total_downloaded, total_errors,
		       COALESCE(manifest_path, '')
		FROM runs
		ORDER BY run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var run RunInfo
		if err := rows.Scan(&run.RunID, &run.SeedURL, &run.StartedAt, &run.FinishedAt,
			&run.TotalDiscovered, &run.TotalDownloaded, &run.TotalErrors, &run.ManifestPath); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindFormsByDigest returns every recorded form whose payload hashed to
// digest. Lets consumers spot identical content behind different URLs.
func (db *DB) FindFormsByDigest(digest string) ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT url FROM forms WHERE sha256 = ? ORDER BY url`, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to query forms by digest: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}
