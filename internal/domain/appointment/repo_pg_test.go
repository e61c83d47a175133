package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (pgxmock.PgxPoolIface, Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewRepoPG(mock)
}

func TestRepoPG_Create_SnapshotAndReconcile(t *testing.T) {
	mock, repo := newMockDB(t)
	patientID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT previous_balance FROM patients WHERE id = \$1 FOR UPDATE`).
		WithArgs(patientID).
		WillReturnRows(pgxmock.NewRows([]string{"previous_balance"}).
			AddRow(decimal.NewFromInt(200)))
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), patientID, "2024-03-15",
			decimal.NewFromInt(500), decimal.NewFromInt(300),
			decimal.NewFromInt(200), "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(now, now))
	mock.ExpectExec(`UPDATE patients SET`).
		WithArgs(patientID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	a := &Appointment{
		PatientID:       patientID,
		AppointmentDate: "2024-03-15",
		TotalAmount:     decimal.NewFromInt(500),
		PaidAmount:      decimal.NewFromInt(300),
	}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.True(t, a.PreviousBalance.Equal(decimal.NewFromInt(200)),
		"snapshot should come from the locked patient row")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPG_Create_UnknownPatientRollsBack(t *testing.T) {
	mock, repo := newMockDB(t)
	patientID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT previous_balance FROM patients WHERE id = \$1 FOR UPDATE`).
		WithArgs(patientID).
		WillReturnRows(pgxmock.NewRows([]string{"previous_balance"}))
	mock.ExpectRollback()

	a := &Appointment{PatientID: patientID, AppointmentDate: "2024-03-15"}
	assert.ErrorIs(t, repo.Create(context.Background(), a), ErrPatientNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPG_Update_Reconciles(t *testing.T) {
	mock, repo := newMockDB(t)
	patientID := uuid.New()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE appointments SET`).
		WithArgs(id, "2024-03-16", decimal.NewFromInt(500), decimal.NewFromInt(500), "paid in full").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE patients SET`).
		WithArgs(patientID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	a := &Appointment{
		ID: id, PatientID: patientID, AppointmentDate: "2024-03-16",
		TotalAmount: decimal.NewFromInt(500), PaidAmount: decimal.NewFromInt(500),
		Notes: "paid in full",
	}
	require.NoError(t, repo.Update(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPG_Update_NotFound(t *testing.T) {
	mock, repo := newMockDB(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE appointments SET`).
		WithArgs(id, "2024-03-16", decimal.Zero, decimal.Zero, "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	a := &Appointment{ID: id, AppointmentDate: "2024-03-16"}
	assert.ErrorIs(t, repo.Update(context.Background(), a), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPG_Delete_ReconcilesOwner(t *testing.T) {
	mock, repo := newMockDB(t)
	patientID := uuid.New()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM appointments WHERE id = \$1 RETURNING patient_id`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"patient_id"}).AddRow(patientID))
	mock.ExpectExec(`UPDATE patients SET`).
		WithArgs(patientID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPG_List_FilterArgs(t *testing.T) {
	mock, repo := newMockDB(t)
	patientID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments a WHERE 1=1 AND a\.patient_id = \$1 AND a\.appointment_date >= \$2::date AND a\.appointment_date <= \$3::date`).
		WithArgs(patientID, "2024-03-10", "2024-03-16").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .* FROM appointments a\s+JOIN patients p`).
		WithArgs(patientID, "2024-03-10", "2024-03-16", 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	f := Filter{PatientID: patientID, StartDate: "2024-03-10", EndDate: "2024-03-16"}
	items, total, err := repo.List(context.Background(), f, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPG_PatientBalance_NotFound(t *testing.T) {
	mock, repo := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT previous_balance FROM patients WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"previous_balance"}))

	_, err := repo.PatientBalance(context.Background(), id)
	assert.ErrorIs(t, err, ErrPatientNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
