// Package audit persists one append-only record per user turn: the raw
// input, the generated plan, the verdict, the confirmation decision and
// every step result. Rows are never updated.
package audit

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/rahul/nexus/internal/intent"
)

type Store struct {
	DB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	const schema = `CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts DATETIME NOT NULL,
		raw TEXT NOT NULL,
		mode TEXT NOT NULL,
		narrative TEXT,
		verdict TEXT NOT NULL,
		reason TEXT,
		confirmed INTEGER NOT NULL,
		steps TEXT NOT NULL,
		results TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Append writes the turn record. Steps and results go in as JSON so they
// stay queryable later; the raw input is redacted first.
func (s *Store) Append(rec intent.Record) error {
	steps, err := json.Marshal(rec.Plan.Steps)
	if err != nil {
		return err
	}
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return err
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	const query = `INSERT INTO turns (ts, raw, mode, narrative, verdict, reason, confirmed, steps, results)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.DB.Exec(query,
		ts,
		Redact(rec.RawInput),
		string(rec.Plan.Mode),
		rec.Plan.Narrative,
		string(rec.Verdict.Decision),
		rec.Verdict.Reason,
		rec.Confirmed,
		string(steps),
		string(results),
	)
	return err
}

// Recent returns the latest turns in chronological order, for planner
// context and operator inspection.
func (s *Store) Recent(limit int) ([]intent.Record, error) {
	const query = `SELECT ts, raw, mode, narrative, verdict, reason, confirmed, steps, results
		FROM turns ORDER BY id DESC LIMIT ?`
	rows, err := s.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []intent.Record
	for rows.Next() {
		var (
			rec            intent.Record
			mode, verdict  string
			steps, results string
		)
		if err := rows.Scan(&rec.Timestamp, &rec.RawInput, &mode, &rec.Plan.Narrative,
			&verdict, &rec.Verdict.Reason, &rec.Confirmed, &steps, &results); err != nil {
			return nil, err
		}
		rec.Plan.Mode = intent.Mode(mode)
		rec.Verdict.Decision = intent.Decision(verdict)
		if err := json.Unmarshal([]byte(steps), &rec.Plan.Steps); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(results), &rec.Results); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first from the query; callers want chronological order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
