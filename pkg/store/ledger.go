// Package store records the outcome of every lead submission.
//
// A failed chain can leave records behind in the CRM or the processor; the
// ledger keeps the ids created so far next to the step that failed.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no submission has the requested id
var ErrNotFound = errors.New("submission not found")

// Status of a finished submission
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Submission is one ledger record
type Submission struct {
	ID                string    `json:"id"`
	Status            Status    `json:"status"`
	HasPaymentInfo    bool      `json:"hasPaymentInfo"`
	FailedStep        string    `json:"failedStep,omitempty"`
	Error             string    `json:"error,omitempty"`
	CRMCustomerID     string    `json:"crmCustomerId,omitempty"`
	PaymentCustomerID string    `json:"paymentCustomerId,omitempty"`
	TokenFingerprint  string    `json:"tokenFingerprint,omitempty"`
	PaymentProfileID  string    `json:"paymentProfileId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	CompletedAt       time.Time `json:"completedAt"`
}

// Orphaned reports whether the submission failed after creating upstream records
func (s Submission) Orphaned() bool {
	return s.Status == StatusFailed && (s.CRMCustomerID != "" || s.PaymentCustomerID != "")
}

// Ledger persists submissions. Implementations are safe for concurrent use.
type Ledger interface {
	Save(ctx context.Context, s Submission) error
	Get(ctx context.Context, id string) (Submission, error)
	ListOrphaned(ctx context.Context, limit int) ([]Submission, error)
	Close() error
}
