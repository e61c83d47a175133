package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicdesk/internal/frontdesk"
	"github.com/clinicdesk/clinicdesk/internal/platform/money"
	"github.com/clinicdesk/clinicdesk/pkg/clinicapi"
	"github.com/clinicdesk/clinicdesk/pkg/daterange"
)

// balanceSource adapts the patient endpoint to the ledger's fetcher: the
// authoritative balance rides on the patient record.
type balanceSource struct{ api *clinicapi.Client }

func (b balanceSource) PatientBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	p, err := b.api.Patients.Get(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return p.PreviousBalance, nil
}

func apptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appts",
		Short: "Appointment ledger",
	}
	cmd.AddCommand(apptsListCmd())
	cmd.AddCommand(apptsAddCmd())
	cmd.AddCommand(apptsEditCmd())
	cmd.AddCommand(apptsDeleteCmd())
	return cmd
}

func resolveRange(cmd *cobra.Command) (daterange.Range, error) {
	preset, _ := cmd.Flags().GetString("preset")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	if preset != "" {
		if start != "" || end != "" {
			return daterange.Range{}, fmt.Errorf("--preset and --start/--end are mutually exclusive")
		}
		return daterange.ForPreset(daterange.Preset(preset), time.Now())
	}
	return daterange.Range{Start: start, End: end}, nil
}

func apptsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := apiClient(cmd)
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")
			patientFlag, _ := cmd.Flags().GetString("patient")

			var patientID uuid.UUID
			if patientFlag != "" {
				var err error
				if patientID, err = uuid.Parse(patientFlag); err != nil {
					return fmt.Errorf("invalid patient id")
				}
			}
			rng, err := resolveRange(cmd)
			if err != nil {
				return err
			}

			fetch := func(ctx context.Context, q frontdesk.Query) (frontdesk.Page[clinicapi.Appointment], error) {
				res, err := api.Appointments.List(ctx, clinicapi.AppointmentQuery{
					PatientID: patientID,
					StartDate: q.Range.Start,
					EndDate:   q.Range.End,
					Page:      q.Page,
					Limit:     q.PageSize,
				})
				if err != nil {
					return frontdesk.Page[clinicapi.Appointment]{}, err
				}
				return frontdesk.Page[clinicapi.Appointment]{
					Items:      res.Data,
					TotalPages: res.Pagination.TotalPages,
					TotalItems: res.Pagination.Total(),
				}, nil
			}

			done := make(chan struct{}, 8)
			c := frontdesk.NewListController(fetch,
				frontdesk.WithPageSize(limit),
				frontdesk.WithNotify(func() { done <- struct{}{} }))
			defer c.Close()

			// A preset selection resets to page 1, like flipping the
			// filter in an interactive view.
			c.SetFilter(rng)
			<-done
			s := c.Snapshot()
			if s.Err != nil {
				return s.Err
			}
			if page > 1 {
				c.SetPage(page)
				if c.Snapshot().Page != page {
					return fmt.Errorf("page %d is out of range (1-%d)", page, s.TotalPages)
				}
				<-done
				s = c.Snapshot()
				if s.Err != nil {
					return s.Err
				}
			}

			fmt.Printf("%-36s  %-10s  %-20s  %10s  %10s  %10s\n",
				"ID", "DATE", "PATIENT", "TOTAL", "PAID", "PREV BAL")
			for _, a := range s.Items {
				fmt.Printf("%-36s  %-10s  %-20s  %10s  %10s  %10s\n",
					a.ID, a.AppointmentDate, a.PatientName,
					a.TotalAmount.StringFixed(2), a.PaidAmount.StringFixed(2),
					a.PreviousBalance.StringFixed(2))
			}
			renderFooter(s, c.VisiblePages())
			return nil
		},
	}
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("limit", 10, "Items per page")
	cmd.Flags().String("patient", "", "Limit to one patient")
	cmd.Flags().String("preset", "", "Date preset: today, this_week, this_month, all")
	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().String("end", "", "End date (YYYY-MM-DD, inclusive)")
	return cmd
}

func apptsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			patientFlag, _ := cmd.Flags().GetString("patient")
			date, _ := cmd.Flags().GetString("date")
			totalInput, _ := cmd.Flags().GetString("total")
			paidInput, _ := cmd.Flags().GetString("paid")
			notes, _ := cmd.Flags().GetString("notes")

			patientID, err := uuid.Parse(patientFlag)
			if err != nil {
				return fmt.Errorf("invalid patient id")
			}
			if date == "" {
				date = daterange.FormatDate(time.Now())
			}

			api := apiClient(cmd)
			ledger := frontdesk.NewLedger(balanceSource{api: api})

			// Fetch the balance fresh, then validate the payment against
			// it before submitting, exactly like the add form does.
			balance, err := ledger.Balance(cmd.Context(), patientID)
			if err != nil {
				return err
			}
			if err := frontdesk.CheckPayment(totalInput, paidInput, balance); err != nil {
				return err
			}
			total, _ := money.Parse(totalInput)
			paid, _ := money.Parse(paidInput)

			created, err := api.Appointments.Create(cmd.Context(), &clinicapi.Appointment{
				PatientID:       patientID,
				AppointmentDate: date,
				TotalAmount:     total,
				PaidAmount:      paid,
				Notes:           notes,
			})
			if err != nil {
				return fmt.Errorf("failed to add appointment: %w", err)
			}
			fmt.Printf("Recorded appointment %s on %s\n", created.ID, created.AppointmentDate)

			refreshAfter(cmd, ledger, patientID)
			return nil
		},
	}
	cmd.Flags().String("patient", "", "Patient id")
	cmd.Flags().String("date", "", "Visit date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().String("total", "0", "Total charge")
	cmd.Flags().String("paid", "0", "Amount paid")
	cmd.Flags().String("notes", "", "Visit notes")
	return cmd
}

// apptEdits carries the flag values of an edit. A nil field leaves the
// recorded value alone.
type apptEdits struct {
	Date  *string
	Total *string
	Paid  *string
	Notes *string
}

// applyEdits merges edits into the fetched appointment, validating the
// payment ceiling against the balance snapshot stored on the visit. Fields
// the caller did not set keep their recorded values, so editing the date or
// notes never disturbs the amounts.
func applyEdits(a *clinicapi.Appointment, e apptEdits) error {
	totalInput := a.TotalAmount.String()
	if e.Total != nil {
		totalInput = *e.Total
	}
	paidInput := a.PaidAmount.String()
	if e.Paid != nil {
		paidInput = *e.Paid
	}
	if err := frontdesk.CheckPayment(totalInput, paidInput, a.PreviousBalance); err != nil {
		return err
	}
	a.TotalAmount, _ = money.Parse(totalInput)
	a.PaidAmount, _ = money.Parse(paidInput)

	if e.Date != nil {
		a.AppointmentDate = *e.Date
	}
	if e.Notes != nil {
		a.Notes = *e.Notes
	}
	return nil
}

func apptsEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid appointment id")
			}

			api := apiClient(cmd)
			existing, err := api.Appointments.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load appointment: %w", err)
			}

			var edits apptEdits
			stringEdit := func(name string) *string {
				if !cmd.Flags().Changed(name) {
					return nil
				}
				v, _ := cmd.Flags().GetString(name)
				return &v
			}
			edits.Date = stringEdit("date")
			edits.Total = stringEdit("total")
			edits.Paid = stringEdit("paid")
			edits.Notes = stringEdit("notes")

			if err := applyEdits(existing, edits); err != nil {
				return err
			}

			updated, err := api.Appointments.Update(cmd.Context(), existing)
			if err != nil {
				return fmt.Errorf("failed to update appointment: %w", err)
			}
			fmt.Printf("Updated appointment %s\n", updated.ID)

			ledger := frontdesk.NewLedger(balanceSource{api: api})
			refreshAfter(cmd, ledger, updated.PatientID)
			return nil
		},
	}
	cmd.Flags().String("date", "", "Visit date (YYYY-MM-DD)")
	cmd.Flags().String("total", "", "Total charge")
	cmd.Flags().String("paid", "", "Amount paid")
	cmd.Flags().String("notes", "", "Visit notes")
	return cmd
}

func apptsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid appointment id")
			}
			patientFlag, _ := cmd.Flags().GetString("patient")

			api := apiClient(cmd)
			if err := api.Appointments.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete appointment: %w", err)
			}
			fmt.Println("Deleted.")

			if patientID, err := uuid.Parse(patientFlag); err == nil {
				ledger := frontdesk.NewLedger(balanceSource{api: api})
				refreshAfter(cmd, ledger, patientID)
			}
			return nil
		},
	}
	cmd.Flags().String("patient", "", "Owning patient id, to report the fresh balance")
	return cmd
}

// refreshAfter reports the patient's post-mutation balance. The refresh is
// best-effort: the mutation already succeeded, so a failure here is noted
// without failing the command.
func refreshAfter(cmd *cobra.Command, ledger *frontdesk.Ledger, patientID uuid.UUID) {
	res := ledger.RefreshAfterMutation(cmd.Context(), patientID,
		func(context.Context) error { return nil })
	if res.BalanceErr != nil {
		fmt.Fprintf(os.Stderr, "warning: could not refresh balance: %v\n", res.BalanceErr)
		return
	}
	fmt.Printf("Patient balance is now %s\n", res.Balance.StringFixed(2))
}
