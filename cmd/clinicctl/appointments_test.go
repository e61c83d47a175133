package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/pkg/clinicapi"
)

func storedVisit() *clinicapi.Appointment {
	return &clinicapi.Appointment{
		AppointmentDate: "2024-03-15",
		TotalAmount:     decimal.NewFromInt(500),
		PaidAmount:      decimal.NewFromInt(300),
		PreviousBalance: decimal.NewFromInt(200),
		Notes:           "follow-up in two weeks",
	}
}

func strp(s string) *string { return &s }

func TestApplyEdits_DateOnlyKeepsAmounts(t *testing.T) {
	a := storedVisit()
	require.NoError(t, applyEdits(a, apptEdits{Date: strp("2024-03-20")}))
	assert.Equal(t, "2024-03-20", a.AppointmentDate)
	assert.True(t, a.TotalAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, a.PaidAmount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "follow-up in two weeks", a.Notes)
}

func TestApplyEdits_PaidCeilingUsesStoredSnapshot(t *testing.T) {
	a := storedVisit()
	err := applyEdits(a, apptEdits{Paid: strp("750")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot exceed 700.00")
	assert.True(t, a.PaidAmount.Equal(decimal.NewFromInt(300)),
		"a rejected edit must not touch the visit")

	require.NoError(t, applyEdits(a, apptEdits{Paid: strp("700")}))
	assert.True(t, a.PaidAmount.Equal(decimal.NewFromInt(700)))
}

func TestApplyEdits_LoweredTotalRechecksPaid(t *testing.T) {
	a := storedVisit()
	err := applyEdits(a, apptEdits{Total: strp("50")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot exceed 250.00")
}

func TestApplyEdits_RejectsNonNumericAmount(t *testing.T) {
	a := storedVisit()
	assert.Error(t, applyEdits(a, apptEdits{Total: strp("12a")}))
}
