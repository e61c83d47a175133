package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/platform/money"
)

// ErrPaymentTooLarge wraps the payment-ceiling failure so handlers can map
// it to 422 while keeping the form-ready message from the money package.
type ErrPaymentTooLarge struct{ cause error }

func (e *ErrPaymentTooLarge) Error() string { return e.cause.Error() }

type Service struct {
	appts Repository
}

func NewService(appts Repository) *Service {
	return &Service{appts: appts}
}

// Create records a visit. The payment is checked against the ceiling
// formed by the visit total plus the patient's balance as it stands now;
// the repository snapshots that same balance onto the row.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	balance, err := s.appts.PatientBalance(ctx, a.PatientID)
	if err != nil {
		return err
	}
	if err := money.ValidatePayment(a.TotalAmount, a.PaidAmount, balance); err != nil {
		return &ErrPaymentTooLarge{cause: err}
	}
	return s.appts.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

// Update edits a visit's date, amounts, and notes. The ceiling uses the
// balance snapshot stored on the visit, not the live patient balance:
// editing an old visit must not be constrained by debt accrued since.
func (s *Service) Update(ctx context.Context, a *Appointment) error {
	existing, err := s.appts.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	a.PatientID = existing.PatientID
	a.PreviousBalance = existing.PreviousBalance
	if err := a.Validate(); err != nil {
		return err
	}
	if err := money.ValidatePayment(a.TotalAmount, a.PaidAmount, a.PreviousBalance); err != nil {
		return &ErrPaymentTooLarge{cause: err}
	}
	return s.appts.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.appts.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	if err := validateRange(f); err != nil {
		return nil, 0, err
	}
	return s.appts.List(ctx, f, limit, offset)
}

func validateRange(f Filter) error {
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return errors.New("startDate must not be after endDate")
	}
	return nil
}
