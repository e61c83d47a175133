package patient

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Genders accepted by the directory.
var Genders = map[string]bool{
	"male":   true,
	"female": true,
	"other":  true,
}

// Patient is a directory record. PreviousBalance is the authoritative
// pending balance owned by the appointment ledger; it changes only as a
// side effect of appointment mutations and is never computed client-side
// from a partial appointment list.
type Patient struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Age               int             `json:"age"`
	Gender            string          `json:"gender"`
	PhoneNumber       string          `json:"phoneNumber"`
	Email             *string         `json:"email,omitempty"`
	Address           string          `json:"address"`
	PreviousBalance   decimal.Decimal `json:"previousBalance"`
	TotalAppointments int             `json:"totalAppointments"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// NormalizePhone strips every non-digit character from s.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks the record's fields and normalizes the phone number in
// place. The phone must be exactly ten digits once separators are stripped.
func (p *Patient) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Age < 0 || p.Age > 150 {
		return fmt.Errorf("age must be between 0 and 150")
	}
	if !Genders[p.Gender] {
		return fmt.Errorf("gender must be male, female, or other")
	}
	p.PhoneNumber = NormalizePhone(p.PhoneNumber)
	if len(p.PhoneNumber) != 10 {
		return fmt.Errorf("phone number must be exactly 10 digits")
	}
	if strings.TrimSpace(p.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if p.PreviousBalance.IsNegative() {
		return fmt.Errorf("previous balance cannot be negative")
	}
	return nil
}

// DashboardStats are the aggregate figures shown on the practice dashboard.
type DashboardStats struct {
	TotalPatients      int             `json:"totalPatients"`
	TodaysAppointments int             `json:"todaysAppointments"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	PendingAmount      decimal.Decimal `json:"pendingAmount"`
}
