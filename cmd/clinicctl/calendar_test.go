package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/pkg/clinicapi"
	"github.com/clinicdesk/clinicdesk/pkg/daterange"
)

func TestMonthStart_DefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.Local)
	start, err := monthStart("", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", daterange.FormatDate(start))
}

func TestMonthStart_ParsesSelection(t *testing.T) {
	start, err := monthStart("2024-12", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2024-12-01", daterange.FormatDate(start))

	_, err = monthStart("december", time.Now())
	assert.Error(t, err)
}

func TestGroupByDay_OrdersDatesAscending(t *testing.T) {
	byDay, days := groupByDay([]clinicapi.Appointment{
		{AppointmentDate: "2024-03-20", PatientName: "Asha Rao"},
		{AppointmentDate: "2024-03-05", PatientName: "Vikram Shah"},
		{AppointmentDate: "2024-03-20", PatientName: "Meera Nair"},
	})
	assert.Equal(t, []string{"2024-03-05", "2024-03-20"}, days)
	assert.Len(t, byDay["2024-03-20"], 2)
	assert.Len(t, byDay["2024-03-05"], 1)
}

func TestRenderMonthGrid_AlignsAndMarks(t *testing.T) {
	// March 2024 starts on a Friday and has 31 days.
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	out := renderMonthGrid(start, map[string]int{"2024-03-15": 2})

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "March 2024", lines[0])
	assert.Equal(t, " Su  Mo  Tu  We  Th  Fr  Sa", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], strings.Repeat(" ", 20)+"  1"),
		"first row must pad five weekday slots before the 1st")
	assert.Contains(t, out, " 15*", "a day with appointments is starred")
	assert.NotContains(t, out, " 14*")
	assert.Contains(t, out, " 31")
}

func TestRenderMonthGrid_NoPaddingWhenMonthStartsSunday(t *testing.T) {
	// December 2024 starts on a Sunday.
	start := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.Local)
	out := renderMonthGrid(start, nil)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[2], "  1"),
		"no blank slots before a Sunday 1st")
}

func TestFetchMonthAppointments_PagesThroughMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2024-03-01", q.Get("startDate"))
		assert.Equal(t, "2024-03-31", q.Get("endDate"))

		page := clinicapi.AppointmentPage{
			Pagination: clinicapi.Pagination{TotalPages: 2},
		}
		switch q.Get("page") {
		case "1":
			page.Data = []clinicapi.Appointment{{AppointmentDate: "2024-03-05"}}
		case "2":
			page.Data = []clinicapi.Appointment{{AppointmentDate: "2024-03-20"}}
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	api := clinicapi.New(srv.URL)
	rng, err := daterange.ForPreset(daterange.ThisMonth,
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)

	appts, err := fetchMonthAppointments(context.Background(), api, uuid.Nil, rng)
	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.Equal(t, "2024-03-05", appts[0].AppointmentDate)
	assert.Equal(t, "2024-03-20", appts[1].AppointmentDate)
}
