package clinicapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Patient mirrors the directory service's wire shape.
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

// Appointment mirrors the ledger service's wire shape. AppointmentDate is
// a plain YYYY-MM-DD calendar date.
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

// DashboardStats are the practice-wide aggregates.
type DashboardStats struct {
	TotalPatients      int             `json:"totalPatients"`
	TodaysAppointments int             `json:"todaysAppointments"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	PendingAmount      decimal.Decimal `json:"pendingAmount"`
}

// Pagination is the list-envelope meta. TotalPatients and
// TotalAppointments alias the same slot on their respective endpoints;
// Total returns whichever is set.
type Pagination struct {
	Page              int `json:"page"`
	Limit             int `json:"limit"`
	TotalPages        int `json:"totalPages"`
	TotalPatients     int `json:"totalPatients"`
	TotalAppointments int `json:"totalAppointments"`
}

func (p Pagination) Total() int {
	if p.TotalAppointments > 0 {
		return p.TotalAppointments
	}
	return p.TotalPatients
}

// PatientPage is one page of the patient directory.
type PatientPage struct {
	Data       []Patient  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// AppointmentPage is one page of the appointment ledger.
type AppointmentPage struct {
	Data       []Appointment `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// User is the authenticated staff account returned by login.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}
