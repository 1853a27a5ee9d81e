// Package history provides the SQLite-backed archive of exported budgets.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/bukodent/presu/internal/format"
	"github.com/bukodent/presu/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS budgets (
	budget_code  TEXT PRIMARY KEY,
	patient_name TEXT NOT NULL,
	budget_date  TEXT NOT NULL,
	total        TEXT NOT NULL,
	saved_at     TEXT NOT NULL,
	payload      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_budgets_saved_at ON budgets(saved_at);
`

// Store archives serialized budget snapshots, addressable by budget code.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the archive database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Entry is one archived budget with its save timestamp.
type Entry struct {
	Record  model.Record
	SavedAt time.Time
}

// Save archives a budget snapshot, replacing any previous entry with the
// same code.
func (s *Store) Save(r model.Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding budget %s: %w", r.BudgetCode, err)
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO budgets
		(budget_code, patient_name, budget_date, total, saved_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.BudgetCode,
		r.PatientName,
		r.Date.UTC().Format(time.RFC3339),
		r.Summary.Total.String(),
		time.Now().UTC().Format(time.RFC3339),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving budget %s: %w", r.BudgetCode, err)
	}
	return nil
}

// All returns every archived budget, newest save first. Rows whose payload
// no longer decodes are skipped rather than failing the whole listing.
func (s *Store) All() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT payload, saved_at FROM budgets ORDER BY saved_at DESC, budget_code DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var payload, savedAt string
		if err := rows.Scan(&payload, &savedAt); err != nil {
			return nil, err
		}

		var rec model.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			log.Printf("presu: skipping corrupt history entry: %v", err)
			continue
		}

		e := Entry{Record: rec}
		e.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Search returns entries whose patient name, budget code or formatted date
// contains the term. A blank term returns everything.
func (s *Store) Search(term string) ([]Entry, error) {
	entries, err := s.All()
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries, nil
	}

	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Record.PatientName), term) ||
			strings.Contains(strings.ToLower(e.Record.BudgetCode), term) ||
			strings.Contains(format.Date(e.Record.Date), term) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ByCode returns the archived budget with the given code.
func (s *Store) ByCode(code string) (Entry, bool, error) {
	var payload, savedAt string
	err := s.db.QueryRow(`SELECT payload, saved_at FROM budgets WHERE budget_code = ?`, code).
		Scan(&payload, &savedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	var rec model.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return Entry{}, false, fmt.Errorf("corrupt history entry %s: %w", code, err)
	}

	e := Entry{Record: rec}
	e.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
	return e, true, nil
}

// Delete removes an archived budget, reporting whether one existed.
func (s *Store) Delete(code string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM budgets WHERE budget_code = ?`, code)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear removes every archived budget.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM budgets`)
	return err
}

// Stats summarizes the archive.
type Stats struct {
	Total       int
	TotalAmount decimal.Decimal
	LastSaved   time.Time
}

// Stats returns entry count, the grand total across entries and the most
// recent save time.
func (s *Store) Stats() (Stats, error) {
	entries, err := s.All()
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Total: len(entries), TotalAmount: decimal.Zero}
	for _, e := range entries {
		st.TotalAmount = st.TotalAmount.Add(e.Record.Summary.Total)
		if e.SavedAt.After(st.LastSaved) {
			st.LastSaved = e.SavedAt
		}
	}
	return st, nil
}
