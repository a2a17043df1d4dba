package cmd

import (
	"github.com/spf13/cobra"

	"github.com/azvault/azvault/pkg/azvault/auth"
	"github.com/azvault/azvault/pkg/azvault/output"
)

func NewCertificateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificate",
		Short: "Inspect vault certificates",
	}
	cmd.AddCommand(newCertificateListCommand())
	return cmd
}

func newCertificateListCommand() *cobra.Command {
	var vault string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List certificate metadata in a vault",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			vaultURI, err := resolveVaultURI(vault)
			if err != nil {
				return err
			}
			token, err := rt.token(cmd.Context(), auth.AudienceVault)
			if err != nil {
				return err
			}
			apic, err := rt.Client()
			if err != nil {
				return err
			}
			certs, err := apic.Certificates().List(cmd.Context(), token, vaultURI)
			rt.record(vaultNameFromURI(vaultURI), "list_certificates", "certificate", "", resultOf(err), "")
			if err != nil {
				return err
			}

			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			switch format {
			case output.FormatTable:
				output.WriteCertificateTable(rt.Writer(), certs)
				return nil
			case output.FormatCSV:
				return output.WriteCSV(rt.Writer(), certs)
			default:
				return output.WriteObject(rt.Writer(), format, certs)
			}
		},
	}
	cmd.Flags().StringVar(&vault, "vault", "", "Vault name or URI")
	return cmd
}
