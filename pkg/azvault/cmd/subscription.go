package cmd

import (
	"github.com/spf13/cobra"

	"github.com/azvault/azvault/pkg/azvault/auth"
	"github.com/azvault/azvault/pkg/azvault/output"
)

func NewSubscriptionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "List Azure subscriptions",
	}
	cmd.AddCommand(newSubscriptionListCommand())
	return cmd
}

func newSubscriptionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accessible subscriptions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			token, err := rt.token(cmd.Context(), auth.AudienceManagement)
			if err != nil {
				return err
			}
			apic, err := rt.Client()
			if err != nil {
				return err
			}
			subs, err := apic.Subscriptions().List(cmd.Context(), token)
			if err != nil {
				return err
			}

			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			switch format {
			case output.FormatTable:
				output.WriteSubscriptionTable(rt.Writer(), subs)
				return nil
			case output.FormatCSV:
				return output.WriteCSV(rt.Writer(), subs)
			default:
				return output.WriteObject(rt.Writer(), format, subs)
			}
		},
	}
}
