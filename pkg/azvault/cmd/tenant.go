package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azvault/azvault/pkg/azvault/auth"
	"github.com/azvault/azvault/pkg/azvault/output"
)

func NewTenantCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "List and switch Azure AD tenants",
	}
	cmd.AddCommand(
		newTenantListCommand(),
		newTenantSetCommand(),
	)
	return cmd
}

func newTenantListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accessible tenants",
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
			tenants, err := apic.Tenants().List(cmd.Context(), token)
			if err != nil {
				return err
			}

			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			switch format {
			case output.FormatTable:
				output.WriteTenantTable(rt.Writer(), tenants)
				return nil
			case output.FormatCSV:
				return output.WriteCSV(rt.Writer(), tenants)
			default:
				return output.WriteObject(rt.Writer(), format, tenants)
			}
		},
	}
}

func newTenantSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <tenant-id>",
		Short: "Switch the active tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			manager, err := rt.Manager()
			if err != nil {
				return err
			}
			manager.SetTenant(args[0])
			rt.record("", "set_tenant", "tenant", manager.Tenant(), "success", "")
			_, _ = fmt.Fprintf(rt.Writer(), "Active tenant: %s\n", manager.Tenant())
			return nil
		},
	}
}
