package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"aidhunter-engine/internal/domain"
)

// Load reads the full store snapshot into memory, keyed by fingerprint.
func (s *Store) Load(ctx context.Context) (map[string]domain.JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT fingerprint, source_id, title, organization, location, description, url,
       donor_tags, first_seen, last_seen, score, breakdown, status, diagnostics
FROM jobs;`)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.JobRecord)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out[j.Fingerprint] = j
	}
	return out, rows.Err()
}

// Persist writes the whole snapshot in a single transaction. Either every
// record lands or none does; a failed run never corrupts the prior state.
func (s *Store) Persist(ctx context.Context, records map[string]domain.JobRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persist begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO jobs (fingerprint, source_id, title, organization, location, description, url,
                  donor_tags, first_seen, last_seen, score, breakdown, status, diagnostics)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(fingerprint) DO UPDATE SET
  source_id = excluded.source_id,
  title = excluded.title,
  organization = excluded.organization,
  location = excluded.location,
  description = excluded.description,
  url = excluded.url,
  donor_tags = excluded.donor_tags,
  last_seen = excluded.last_seen,
  score = excluded.score,
  breakdown = excluded.breakdown,
  status = excluded.status,
  diagnostics = excluded.diagnostics;`)
	if err != nil {
		return fmt.Errorf("persist prepare: %w", err)
	}
	defer stmt.Close()

	for _, j := range records {
		tags, _ := json.Marshal(j.DonorTags)
		diags, _ := json.Marshal(j.Diagnostics)
		breakdown := ""
		if j.Breakdown != nil {
			b, _ := json.Marshal(j.Breakdown)
			breakdown = string(b)
		}

		if _, err := stmt.ExecContext(ctx,
			j.Fingerprint, j.SourceID, j.Title, j.Organization, j.Location, j.Description, j.URL,
			string(tags), j.FirstSeenAt.UTC().Format(time.RFC3339Nano),
			j.LastSeenAt.UTC().Format(time.RFC3339Nano),
			j.Score, breakdown, string(j.Status), string(diags),
		); err != nil {
			return fmt.Errorf("persist %s: %w", j.Fingerprint, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("persist commit: %w", err)
	}
	return nil
}

// SetStatus is the write-back used by downstream consumers (notifier,
// generator) once they have processed a record.
func (s *Store) SetStatus(ctx context.Context, fingerprint string, status domain.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE fingerprint = ?;`, string(status), fingerprint)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set status: fingerprint %s not found", fingerprint)
	}
	return nil
}

func scanJob(rows *sql.Rows) (domain.JobRecord, error) {
	var j domain.JobRecord
	var tags, firstSeen, lastSeen, breakdown, status, diags string

	if err := rows.Scan(&j.Fingerprint, &j.SourceID, &j.Title, &j.Organization, &j.Location,
		&j.Description, &j.URL, &tags, &firstSeen, &lastSeen, &j.Score, &breakdown, &status, &diags,
	); err != nil {
		return j, fmt.Errorf("scan job: %w", err)
	}

	_ = json.Unmarshal([]byte(tags), &j.DonorTags)
	_ = json.Unmarshal([]byte(diags), &j.Diagnostics)
	if breakdown != "" {
		_ = json.Unmarshal([]byte(breakdown), &j.Breakdown)
	}
	j.Status = domain.Status(status)
	j.FirstSeenAt, _ = time.Parse(time.RFC3339Nano, firstSeen)
	j.LastSeenAt, _ = time.Parse(time.RFC3339Nano, lastSeen)
	return j, nil
}
