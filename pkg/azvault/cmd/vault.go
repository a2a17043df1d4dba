package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/azvault/azvault/pkg/azvault/auth"
	"github.com/azvault/azvault/pkg/azvault/output"
)

func NewVaultCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Discover Key Vaults",
	}
	cmd.AddCommand(newVaultListCommand())
	return cmd
}

func newVaultListCommand() *cobra.Command {
	var subscriptionID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List Key Vaults in a subscription",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if subscriptionID == "" {
				return errors.New("--subscription is required")
			}
			token, err := rt.token(cmd.Context(), auth.AudienceManagement)
			if err != nil {
				return err
			}
			apic, err := rt.Client()
			if err != nil {
				return err
			}
			vaults, err := apic.Vaults().List(cmd.Context(), token, subscriptionID)
			if err != nil {
				return err
			}

			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			switch format {
			case output.FormatTable:
				output.WriteVaultTable(rt.Writer(), vaults)
				return nil
			case output.FormatCSV:
				return output.WriteCSV(rt.Writer(), vaults)
			default:
				return output.WriteObject(rt.Writer(), format, vaults)
			}
		},
	}
	cmd.Flags().StringVarP(&subscriptionID, "subscription", "s", "", "Subscription ID")
	return cmd
}
