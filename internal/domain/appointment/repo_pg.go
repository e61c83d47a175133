package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests. Mutations open their own transactions via Begin.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type repoPG struct{ db DB }

func NewRepoPG(db DB) Repository { return &repoPG{db: db} }

const cols = `a.id, a.patient_id, p.name, a.appointment_date::text,
	a.total_amount, a.paid_amount, a.previous_balance, a.notes,
	a.created_at, a.updated_at`

// reconcileSQL recomputes the patient's pending balance and visit count
// from the full ledger. The balance is the sum of unpaid remainders,
// floored at zero so overpayments that cleared old debt do not go
// negative.
const reconcileSQL = `
	UPDATE patients SET
		previous_balance = GREATEST(COALESCE(
			(SELECT SUM(total_amount - paid_amount) FROM appointments WHERE patient_id = $1), 0), 0),
		total_appointments =
			(SELECT COUNT(*) FROM appointments WHERE patient_id = $1),
		updated_at = NOW()
	WHERE id = $1`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.AppointmentDate,
		&a.TotalAmount, &a.PaidAmount, &a.PreviousBalance, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock the patient row so concurrent visits snapshot and reconcile
	// serially.
	var balance decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT previous_balance FROM patients WHERE id = $1 FOR UPDATE`,
		a.PatientID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPatientNotFound
	}
	if err != nil {
		return err
	}
	a.PreviousBalance = balance

	a.ID = uuid.New()
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments
			(id, patient_id, appointment_date, total_amount, paid_amount, previous_balance, notes)
		VALUES ($1,$2,$3::date,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.AppointmentDate, a.TotalAmount, a.PaidAmount,
		a.PreviousBalance, a.Notes).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, reconcileSQL, a.PatientID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, `
		SELECT `+cols+` FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE appointments SET appointment_date=$2::date, total_amount=$3,
			paid_amount=$4, notes=$5, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.AppointmentDate, a.TotalAmount, a.PaidAmount, a.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, reconcileSQL, a.PatientID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var patientID uuid.UUID
	err = tx.QueryRow(ctx,
		`DELETE FROM appointments WHERE id = $1 RETURNING patient_id`, id).
		Scan(&patientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, reconcileSQL, patientID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// List returns visits newest-first, optionally scoped to one patient and
// an inclusive calendar-date range. A range with only a start date is
// open-ended, which is how the "today onward" preset queries.
func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	n := 0
	next := func(v interface{}) string {
		args = append(args, v)
		n++
		return fmt.Sprintf("$%d", n)
	}
	if f.PatientID != uuid.Nil {
		where += " AND a.patient_id = " + next(f.PatientID)
	}
	if f.StartDate != "" {
		where += " AND a.appointment_date >= " + next(f.StartDate) + "::date"
	}
	if f.EndDate != "" {
		where += " AND a.appointment_date <= " + next(f.EndDate) + "::date"
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments a `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + cols + ` FROM appointments a
		JOIN patients p ON p.id = a.patient_id ` + where +
		` ORDER BY a.appointment_date DESC, a.created_at DESC LIMIT ` + next(limit) +
		` OFFSET ` + next(offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) PatientBalance(ctx context.Context, patientID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT previous_balance FROM patients WHERE id = $1`, patientID).
		Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrPatientNotFound
	}
	return balance, err
}
