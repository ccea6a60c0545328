package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"igclient/pkg/session"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session",
	Long: `Run the login sequence against the API and persist the resulting
session. Subsequent commands reuse the persisted session instead of
logging in again.`,
	RunE: runLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and discard the persisted session",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as user %d\n", client.UserID())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	if err := client.Logout(cmd.Context()); err != nil {
		return err
	}

	if manager, err := session.NewManager(cfg.Account.Username); err == nil {
		_ = manager.Delete()
	}

	fmt.Println("Logged out.")
	return nil
}
