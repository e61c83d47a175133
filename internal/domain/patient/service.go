package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/pkg/daterange"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// Search matches the query against patient names (case-insensitive
// substring) and phone numbers (digit prefix). A blank query falls back to
// a plain listing.
func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.patients.List(ctx, limit, offset)
	}
	if len(query) > 100 {
		return nil, 0, fmt.Errorf("search query too long")
	}
	return s.patients.Search(ctx, query, limit, offset)
}

// Dashboard aggregates practice-wide figures. "Today" is the server's
// local calendar date.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	return s.patients.Dashboard(ctx, daterange.FormatDate(time.Now()))
}
