// clinicctl is a terminal front-end for the clinic API. It drives the
// same list controllers and balance ledger the richer clients use and
// renders their state as plain text.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinicctl",
		Short: "Clinic front desk, in a terminal",
	}
	rootCmd.PersistentFlags().String("server", envOr("CLINIC_SERVER", "http://localhost:7000/api/v1"), "API base URL")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(patientsCmd())
	rootCmd.AddCommand(apptsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
