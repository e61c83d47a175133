package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ db DB }

func NewRepoPG(db DB) Repository { return &repoPG{db: db} }

const cols = `id, name, age, gender, phone_number, email, address,
	previous_balance, total_appointments, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.PhoneNumber, &p.Email,
		&p.Address, &p.PreviousBalance, &p.TotalAppointments, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.db.QueryRow(ctx, `
		INSERT INTO patients (id, name, age, gender, phone_number, email, address)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING previous_balance, total_appointments, created_at, updated_at`,
		p.ID, p.Name, p.Age, p.Gender, p.PhoneNumber, p.Email, p.Address).
		Scan(&p.PreviousBalance, &p.TotalAppointments, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.db.QueryRow(ctx, `SELECT `+cols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE patients SET name=$2, age=$3, gender=$4, phone_number=$5,
			email=$6, address=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Age, p.Gender, p.PhoneNumber, p.Email, p.Address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	// Appointments cascade via their patient_id foreign key.
	tag, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+cols+` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + query + "%"
	// A query with no digits must not match every phone number; LIKE ''
	// matches nothing since phone_number is never empty.
	phonePrefix := ""
	if digits := NormalizePhone(query); digits != "" {
		phonePrefix = digits + "%"
	}

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM patients
		WHERE name ILIKE $1 OR phone_number LIKE $2`,
		pattern, phonePrefix).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+cols+` FROM patients
		WHERE name ILIKE $1 OR phone_number LIKE $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		pattern, phonePrefix, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) Dashboard(ctx context.Context, today string) (*DashboardStats, error) {
	var stats DashboardStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date = $1::date),
			COALESCE((SELECT SUM(paid_amount) FROM appointments), 0),
			COALESCE((SELECT SUM(previous_balance) FROM patients), 0)`,
		today).
		Scan(&stats.TotalPatients, &stats.TodaysAppointments, &stats.TotalRevenue, &stats.PendingAmount)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
