package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("appointment not found")
	ErrPatientNotFound = errors.New("patient not found")
)

// Repository persists visits and keeps the owning patient's balance and
// visit count consistent with the ledger. Every mutation reconciles the
// patient row in the same transaction.
type Repository interface {
	// Create inserts a visit, snapshotting the patient's balance onto it.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)

	// PatientBalance returns the patient's current outstanding balance.
	PatientBalance(ctx context.Context, patientID uuid.UUID) (decimal.Decimal, error)
}
