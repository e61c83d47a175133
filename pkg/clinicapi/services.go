package clinicapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// AuthService handles login and logout against the auth collaborator.
type AuthService struct{ c *Client }

// Login exchanges credentials for a bearer token and stores it on the
// client's session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*User, error) {
	var resp struct {
		Token string `json:"token"`
		User  *User  `json:"user"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := s.c.do(ctx, http.MethodPost, "/user/login", nil, body, &resp); err != nil {
		return nil, err
	}
	s.c.Session.SetToken(resp.Token)
	return resp.User, nil
}

// Logout clears the stored credential. Purely client-side; the token is
// stateless on the server.
func (s *AuthService) Logout() {
	s.c.Session.Clear()
}

// PatientService wraps the patient directory endpoints.
type PatientService struct{ c *Client }

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

func (s *PatientService) List(ctx context.Context, page, limit int) (*PatientPage, error) {
	var out PatientPage
	if err := s.c.do(ctx, http.MethodGet, "/patients", pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PatientService) Search(ctx context.Context, query string, page, limit int) (*PatientPage, error) {
	q := pageQuery(page, limit)
	q.Set("query", query)
	var out PatientPage
	if err := s.c.do(ctx, http.MethodGet, "/patients/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one patient, including the authoritative previousBalance as
// it stands right now.
func (s *PatientService) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var out Patient
	if err := s.c.do(ctx, http.MethodGet, "/patients/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PatientService) Create(ctx context.Context, p *Patient) (*Patient, error) {
	var out Patient
	if err := s.c.do(ctx, http.MethodPost, "/patients", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PatientService) Update(ctx context.Context, p *Patient) (*Patient, error) {
	var out Patient
	if err := s.c.do(ctx, http.MethodPut, "/patients/"+p.ID.String(), nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PatientService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.c.do(ctx, http.MethodDelete, "/patients/"+id.String(), nil, nil, nil)
}

func (s *PatientService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := s.c.do(ctx, http.MethodGet, "/patients/dashboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AppointmentService wraps the appointment ledger endpoints.
type AppointmentService struct{ c *Client }

// AppointmentQuery narrows a listing. A nil PatientID means all patients;
// empty date bounds are open-ended. Dates are inclusive YYYY-MM-DD.
type AppointmentQuery struct {
	PatientID uuid.UUID
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

func (s *AppointmentService) List(ctx context.Context, query AppointmentQuery) (*AppointmentPage, error) {
	q := pageQuery(query.Page, query.Limit)
	if query.PatientID != uuid.Nil {
		q.Set("id", query.PatientID.String())
	}
	if query.StartDate != "" {
		q.Set("startDate", query.StartDate)
	}
	if query.EndDate != "" {
		q.Set("endDate", query.EndDate)
	}
	var out AppointmentPage
	if err := s.c.do(ctx, http.MethodGet, "/appointments", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one appointment, including the balance snapshot taken when
// the visit was recorded.
func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var out Appointment
	if err := s.c.do(ctx, http.MethodGet, "/appointments/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AppointmentService) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	var out Appointment
	if err := s.c.do(ctx, http.MethodPost, "/appointments", nil, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AppointmentService) Update(ctx context.Context, a *Appointment) (*Appointment, error) {
	var out Appointment
	if err := s.c.do(ctx, http.MethodPut, "/appointments/"+a.ID.String(), nil, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.c.do(ctx, http.MethodDelete, "/appointments/"+id.String(), nil, nil, nil)
}
