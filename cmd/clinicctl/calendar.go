package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicdesk/pkg/clinicapi"
	"github.com/clinicdesk/clinicdesk/pkg/daterange"
)

// monthStart resolves a YYYY-MM month selection to the first day of that
// month, defaulting to the month containing now.
func monthStart(flag string, now time.Time) (time.Time, error) {
	if flag == "" {
		year, month, _ := now.Date()
		return time.Date(year, month, 1, 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.ParseInLocation("2006-01", flag, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM", flag)
	}
	return t, nil
}

// groupByDay buckets appointments by their calendar date and returns the
// dates in ascending order.
func groupByDay(appts []clinicapi.Appointment) (map[string][]clinicapi.Appointment, []string) {
	byDay := make(map[string][]clinicapi.Appointment)
	for _, a := range appts {
		byDay[a.AppointmentDate] = append(byDay[a.AppointmentDate], a)
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	return byDay, days
}

// renderMonthGrid draws a weekday-aligned month grid, blanks padding the
// row before the 1st. Days with at least one appointment are starred.
func renderMonthGrid(start time.Time, counts map[string]int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", start.Format("January 2006"))
	b.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")

	year, month, _ := start.Date()
	loc := start.Location()
	// Day zero of the next month is the last day of this one.
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()

	col := int(time.Date(year, month, 1, 0, 0, 0, 0, loc).Weekday())
	b.WriteString(strings.Repeat("    ", col))
	for day := 1; day <= days; day++ {
		key := daterange.FormatDate(time.Date(year, month, day, 0, 0, 0, 0, loc))
		mark := byte(' ')
		if counts[key] > 0 {
			mark = '*'
		}
		fmt.Fprintf(&b, "%3d%c", day, mark)
		col++
		if col == 7 {
			b.WriteByte('\n')
			col = 0
		}
	}
	if col != 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

// fetchMonthAppointments pages through the listing until the month is
// fully loaded.
func fetchMonthAppointments(ctx context.Context, api *clinicapi.Client, patientID uuid.UUID, rng daterange.Range) ([]clinicapi.Appointment, error) {
	var all []clinicapi.Appointment
	for page := 1; ; page++ {
		res, err := api.Appointments.List(ctx, clinicapi.AppointmentQuery{
			PatientID: patientID,
			StartDate: rng.Start,
			EndDate:   rng.End,
			Page:      page,
			Limit:     100,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Data...)
		if page >= res.Pagination.TotalPages || len(res.Data) == 0 {
			break
		}
	}
	return all, nil
}

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Month view of appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			monthFlag, _ := cmd.Flags().GetString("month")
			patientFlag, _ := cmd.Flags().GetString("patient")

			var patientID uuid.UUID
			if patientFlag != "" {
				var err error
				if patientID, err = uuid.Parse(patientFlag); err != nil {
					return fmt.Errorf("invalid patient id")
				}
			}
			start, err := monthStart(monthFlag, time.Now())
			if err != nil {
				return err
			}
			// Anchoring the preset at the month's first day yields the
			// same first..last bounds the list filter uses.
			rng, err := daterange.ForPreset(daterange.ThisMonth, start)
			if err != nil {
				return err
			}

			api := apiClient(cmd)
			appts, err := fetchMonthAppointments(cmd.Context(), api, patientID, rng)
			if err != nil {
				return err
			}

			byDay, days := groupByDay(appts)
			counts := make(map[string]int, len(byDay))
			for d, list := range byDay {
				counts[d] = len(list)
			}
			fmt.Print(renderMonthGrid(start, counts))

			if len(days) == 0 {
				fmt.Println("\nNo appointments this month.")
				return nil
			}
			for _, d := range days {
				fmt.Printf("\n%s\n", d)
				for _, a := range byDay[d] {
					fmt.Printf("  %-20s  total %s  paid %s  %s\n",
						a.PatientName, a.TotalAmount.StringFixed(2),
						a.PaidAmount.StringFixed(2), a.Notes)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("month", "", "Month to display (YYYY-MM, defaults to current)")
	cmd.Flags().String("patient", "", "Limit to one patient")
	return cmd
}
