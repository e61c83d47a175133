package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/clinicdesk/clinicdesk/pkg/clinicapi"
)

// tokenPath is the only persisted client state: the bearer token, cleared
// on logout or on the first 401.
func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".clinicdesk", "token"), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func loadToken() string {
	path, err := tokenPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func clearToken() {
	if path, err := tokenPath(); err == nil {
		os.Remove(path)
	}
}

// apiClient builds a client with the stored token. A 401 from any call
// tears the session down: the token file is removed and the user is told
// to log in again.
func apiClient(cmd *cobra.Command) *clinicapi.Client {
	server, _ := cmd.Flags().GetString("server")
	c := clinicapi.New(server)
	if tok := loadToken(); tok != "" {
		c.Session.SetToken(tok)
	}
	c.Session.OnExpired(func() {
		clearToken()
		fmt.Fprintln(os.Stderr, "Session expired. Run 'clinicctl login' to sign in again.")
	})
	return c
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			fmt.Print("Password: ")
			pw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return err
			}

			c := apiClient(cmd)
			u, err := c.Auth.Login(cmd.Context(), username, string(pw))
			if err != nil {
				return err
			}
			if err := saveToken(c.Session.Token()); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s\n", u.Username)
			return nil
		},
	}
	cmd.Flags().String("username", "", "Login name")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			clearToken()
			fmt.Println("Signed out.")
			return nil
		},
	}
}
