package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicdesk/clinicdesk/internal/platform/money"
)

// Appointment is a single visit record. PreviousBalance is a snapshot of
// the patient's outstanding balance taken when the visit was created; the
// live balance lives on the patient row and is recomputed from the full
// ledger on every mutation.
type Appointment struct {
	ID              uuid.UUID       `json:"id"`
	PatientID       uuid.UUID       `json:"patientId"`
	PatientName     string          `json:"patientName,omitempty"`
	AppointmentDate string          `json:"appointmentDate"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Validate checks everything except the payment ceiling, which needs the
// patient's balance and is enforced by the service.
func (a *Appointment) Validate() error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patientId is required")
	}
	if _, err := time.Parse("2006-01-02", a.AppointmentDate); err != nil {
		return fmt.Errorf("appointmentDate must be YYYY-MM-DD")
	}
	if !money.InRange(a.TotalAmount) {
		return fmt.Errorf("totalAmount must be between 0 and %s", money.MaxAmount)
	}
	if !money.InRange(a.PaidAmount) {
		return fmt.Errorf("paidAmount must be between 0 and %s", money.MaxAmount)
	}
	return nil
}

// Filter narrows appointment listings. Zero values mean "no constraint";
// StartDate and EndDate are inclusive YYYY-MM-DD bounds.
type Filter struct {
	PatientID uuid.UUID
	StartDate string
	EndDate   string
}
