package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicdesk/internal/frontdesk"
	"github.com/clinicdesk/clinicdesk/pkg/clinicapi"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// renderFooter prints the bounded page window under a listing.
func renderFooter[T any](s frontdesk.State[T], visible []int) {
	var parts []string
	for _, p := range visible {
		switch {
		case p == pagination.Ellipsis:
			parts = append(parts, "…")
		case p == s.Page:
			parts = append(parts, fmt.Sprintf("[%d]", p))
		default:
			parts = append(parts, fmt.Sprintf("%d", p))
		}
	}
	fmt.Printf("\nPage %d of %d (%d total)  %s\n", s.Page, s.TotalPages, s.TotalItems, strings.Join(parts, " "))
}

// settle drives a controller to the requested page and returns the
// settled state. The first fetch establishes the page count; an explicit
// page request then goes through the same bounds-checked SetPage an
// interactive view would use.
func settle[T any](c *frontdesk.ListController[T], done <-chan struct{}, search string, page int) (frontdesk.State[T], error) {
	if search != "" {
		c.SetSearchTerm(search)
	} else {
		c.Refresh()
	}
	<-done
	s := c.Snapshot()
	if s.Err != nil || page <= 1 {
		return s, s.Err
	}
	c.SetPage(page)
	if c.Snapshot().Page != page {
		return s, fmt.Errorf("page %d is out of range (1-%d)", page, s.TotalPages)
	}
	<-done
	s = c.Snapshot()
	return s, s.Err
}

func patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Patient directory",
	}
	cmd.AddCommand(patientsListCmd())
	cmd.AddCommand(patientsShowCmd())
	cmd.AddCommand(patientsAddCmd())
	cmd.AddCommand(patientsDeleteCmd())
	return cmd
}

func patientsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List or search patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := apiClient(cmd)
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")
			search, _ := cmd.Flags().GetString("search")

			fetch := func(ctx context.Context, q frontdesk.Query) (frontdesk.Page[clinicapi.Patient], error) {
				var res *clinicapi.PatientPage
				var err error
				if q.Search != "" {
					res, err = api.Patients.Search(ctx, q.Search, q.Page, q.PageSize)
				} else {
					res, err = api.Patients.List(ctx, q.Page, q.PageSize)
				}
				if err != nil {
					return frontdesk.Page[clinicapi.Patient]{}, err
				}
				return frontdesk.Page[clinicapi.Patient]{
					Items:      res.Data,
					TotalPages: res.Pagination.TotalPages,
					TotalItems: res.Pagination.Total(),
				}, nil
			}

			done := make(chan struct{}, 8)
			c := frontdesk.NewListController(fetch,
				frontdesk.WithPageSize(limit),
				frontdesk.WithDebounce(0),
				frontdesk.WithNotify(func() { done <- struct{}{} }))
			defer c.Close()

			s, err := settle(c, done, search, page)
			if err != nil {
				return err
			}
			visible := c.VisiblePages()

			fmt.Printf("%-36s  %-24s %3s  %-6s  %-10s  %10s\n",
				"ID", "NAME", "AGE", "GENDER", "PHONE", "BALANCE")
			for _, p := range s.Items {
				fmt.Printf("%-36s  %-24s %3d  %-6s  %-10s  %10s\n",
					p.ID, p.Name, p.Age, p.Gender, p.PhoneNumber, p.PreviousBalance.StringFixed(2))
			}
			renderFooter(s, visible)
			return nil
		},
	}
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("limit", 10, "Items per page")
	cmd.Flags().String("search", "", "Name or phone prefix to search for")
	return cmd
}

func patientsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one patient with their current balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid patient id")
			}
			api := apiClient(cmd)
			p, err := api.Patients.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Name:         %s\n", p.Name)
			fmt.Printf("Age:          %d\n", p.Age)
			fmt.Printf("Gender:       %s\n", p.Gender)
			fmt.Printf("Phone:        %s\n", p.PhoneNumber)
			fmt.Printf("Address:      %s\n", p.Address)
			fmt.Printf("Appointments: %d\n", p.TotalAppointments)
			fmt.Printf("Balance due:  %s\n", p.PreviousBalance.StringFixed(2))
			return nil
		},
	}
}

func patientsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &clinicapi.Patient{}
			p.Name, _ = cmd.Flags().GetString("name")
			p.Age, _ = cmd.Flags().GetInt("age")
			p.Gender, _ = cmd.Flags().GetString("gender")
			p.PhoneNumber, _ = cmd.Flags().GetString("phone")
			p.Address, _ = cmd.Flags().GetString("address")
			if email, _ := cmd.Flags().GetString("email"); email != "" {
				p.Email = &email
			}

			api := apiClient(cmd)
			created, err := api.Patients.Create(cmd.Context(), p)
			if err != nil {
				return fmt.Errorf("failed to add patient: %w", err)
			}
			fmt.Printf("Added %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().Int("age", 0, "Age in years")
	cmd.Flags().String("gender", "", "male, female, or other")
	cmd.Flags().String("phone", "", "10-digit phone number")
	cmd.Flags().String("address", "", "Street address")
	cmd.Flags().String("email", "", "Email (optional)")
	return cmd
}

func patientsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient and their appointments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid patient id")
			}
			api := apiClient(cmd)
			if err := api.Patients.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete patient: %w", err)
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Practice-wide figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := apiClient(cmd)
			stats, err := api.Patients.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Patients:             %d\n", stats.TotalPatients)
			fmt.Printf("Today's appointments: %d\n", stats.TodaysAppointments)
			fmt.Printf("Total revenue:        %s\n", stats.TotalRevenue.StringFixed(2))
			fmt.Printf("Pending amount:       %s\n", stats.PendingAmount.StringFixed(2))
			return nil
		},
	}
}
