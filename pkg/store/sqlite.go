package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteLedger persists submissions in a SQLite database
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens the database at dsn and creates the schema if needed
func NewSQLiteLedger(dsn string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "open submission ledger")
	}
	// a single connection keeps ":memory:" databases shared and avoids
	// SQLITE_BUSY on concurrent writes
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "migrate submission ledger")
	}
	return &SQLiteLedger{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS submissions (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    has_payment_info INTEGER NOT NULL,
    failed_step TEXT,
    error TEXT,
    crm_customer_id TEXT,
    payment_customer_id TEXT,
    token_fingerprint TEXT,
    payment_profile_id TEXT,
    created_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status);
`)
	return err
}

// Save upserts s by id
func (l *SQLiteLedger) Save(ctx context.Context, s Submission) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.CompletedAt.IsZero() {
		s.CompletedAt = s.CreatedAt
	}
	_, err := l.db.ExecContext(ctx, `
INSERT OR REPLACE INTO submissions(
    id, status, has_payment_info, failed_step, error, crm_customer_id,
    payment_customer_id, token_fingerprint, payment_profile_id, created_at, completed_at
) VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, string(s.Status), s.HasPaymentInfo, s.FailedStep, s.Error, s.CRMCustomerID,
		s.PaymentCustomerID, s.TokenFingerprint, s.PaymentProfileID, s.CreatedAt, s.CompletedAt)
	return eris.Wrap(err, "save submission")
}

const selectColumns = `id, status, has_payment_info, failed_step, error, crm_customer_id,
    payment_customer_id, token_fingerprint, payment_profile_id, created_at, completed_at`

// Get returns the submission with id or ErrNotFound
func (l *SQLiteLedger) Get(ctx context.Context, id string) (Submission, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM submissions WHERE id = ?`, id)
	s, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, eris.Wrap(err, "get submission")
	}
	return s, nil
}

// ListOrphaned returns orphaned submissions, newest first. limit <= 0 means no limit.
func (l *SQLiteLedger) ListOrphaned(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM submissions
WHERE status = ? AND (crm_customer_id <> '' OR payment_customer_id <> '')
ORDER BY created_at DESC LIMIT ?`, string(StatusFailed), limit)
	if err != nil {
		return nil, eris.Wrap(err, "list orphaned submissions")
	}
	defer rows.Close()

	res := make([]Submission, 0)
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan submission")
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// Close closes the database
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (Submission, error) {
	var (
		s      Submission
		status string
	)
	err := r.Scan(&s.ID, &status, &s.HasPaymentInfo, &s.FailedStep, &s.Error, &s.CRMCustomerID,
		&s.PaymentCustomerID, &s.TokenFingerprint, &s.PaymentProfileID, &s.CreatedAt, &s.CompletedAt)
	s.Status = Status(status)
	return s, err
}
