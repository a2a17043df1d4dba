package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/azvault/azvault/pkg/azvault/auth"
	"github.com/azvault/azvault/pkg/azvault/output"
)

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in and out of Azure",
	}
	cmd.AddCommand(
		newAuthLoginCommand(),
		newAuthStatusCommand(),
		newAuthLogoutCommand(),
	)
	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in via the device-code flow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			manager, err := rt.Manager()
			if err != nil {
				return err
			}
			token, err := manager.Login(cmd.Context(), func(session auth.DeviceCodeSession) {
				if session.Message != "" {
					_, _ = fmt.Fprintln(rt.Writer(), session.Message)
					return
				}
				_, _ = fmt.Fprintf(rt.Writer(), "To sign in, open %s and enter the code %s\n",
					session.VerificationURI, session.UserCode)
			})
			if err != nil {
				rt.record("", "login", "auth", "", "error", "")
				return err
			}
			rt.record("", "login", "auth", "", "success", "")
			_, _ = fmt.Fprintf(rt.Writer(), "Signed in. Token expires at %s\n",
				token.Expiry.UTC().Format(time.RFC3339))
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sign-in status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			manager, err := rt.Manager()
			if err != nil {
				return err
			}
			state := manager.Status(cmd.Context())

			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteObject(rt.Writer(), format, state)
			}

			if !state.SignedIn {
				_, _ = fmt.Fprintln(rt.Writer(), "Not signed in")
				return nil
			}
			_, _ = fmt.Fprintln(rt.Writer(), "Signed in")
			if state.UserName != nil {
				_, _ = fmt.Fprintf(rt.Writer(), "User:   %s\n", *state.UserName)
			}
			if state.TenantID != nil {
				_, _ = fmt.Fprintf(rt.Writer(), "Tenant: %s\n", *state.TenantID)
			}
			return nil
		},
	}
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and delete the persisted session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			manager, err := rt.Manager()
			if err != nil {
				return err
			}
			manager.SignOut()
			rt.record("", "logout", "auth", "", "success", "")
			_, _ = fmt.Fprintln(rt.Writer(), "Signed out")
			return nil
		},
	}
}
