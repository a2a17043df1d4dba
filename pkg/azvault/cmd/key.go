package cmd

import (
	"github.com/spf13/cobra"

	"github.com/azvault/azvault/pkg/azvault/auth"
	"github.com/azvault/azvault/pkg/azvault/output"
)

func NewKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Inspect vault keys",
	}
	cmd.AddCommand(newKeyListCommand())
	return cmd
}

func newKeyListCommand() *cobra.Command {
	var vault string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List key metadata in a vault",
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
			keys, err := apic.Keys().List(cmd.Context(), token, vaultURI)
			rt.record(vaultNameFromURI(vaultURI), "list_keys", "key", "", resultOf(err), "")
			if err != nil {
				return err
			}

			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			switch format {
			case output.FormatTable:
				output.WriteKeyTable(rt.Writer(), keys)
				return nil
			case output.FormatCSV:
				return output.WriteCSV(rt.Writer(), keys)
			default:
				return output.WriteObject(rt.Writer(), format, keys)
			}
		},
	}
	cmd.Flags().StringVar(&vault, "vault", "", "Vault name or URI")
	return cmd
}
