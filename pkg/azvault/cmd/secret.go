package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azvault/azvault/pkg/azvault/auth"
	"github.com/azvault/azvault/pkg/azvault/client"
	"github.com/azvault/azvault/pkg/azvault/output"
)

func NewSecretCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage vault secrets",
	}
	cmd.AddCommand(
		newSecretListCommand(),
		newSecretGetCommand(),
		newSecretSetCommand(),
		newSecretDeleteCommand(),
		newSecretRecoverCommand(),
		newSecretPurgeCommand(),
	)
	return cmd
}

func newSecretListCommand() *cobra.Command {
	var vault string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List secret metadata in a vault",
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
			secrets, err := apic.Secrets().List(cmd.Context(), token, vaultURI)
			rt.record(vaultNameFromURI(vaultURI), "list_secrets", "secret", "", resultOf(err), "")
			if err != nil {
				return err
			}

			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			switch format {
			case output.FormatTable:
				output.WriteSecretTable(rt.Writer(), secrets)
				return nil
			case output.FormatCSV:
				return output.WriteCSV(rt.Writer(), secrets)
			default:
				return output.WriteObject(rt.Writer(), format, secrets)
			}
		},
	}
	cmd.Flags().StringVar(&vault, "vault", "", "Vault name or URI")
	return cmd
}

func newSecretGetCommand() *cobra.Command {
	var vault string
	var showValue bool
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Get secret metadata, or the value with --show-value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			if err := validateItemName(name, "secret name"); err != nil {
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
			vaultName := vaultNameFromURI(vaultURI)

			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}

			if showValue {
				value, err := apic.Secrets().GetValue(cmd.Context(), token, vaultURI, name)
				rt.record(vaultName, "get_secret_value", "secret", name, resultOf(err), "")
				if err != nil {
					return err
				}
				if format == output.FormatTable {
					_, _ = fmt.Fprintln(rt.Writer(), value.Value)
					return nil
				}
				return output.WriteObject(rt.Writer(), format, value)
			}

			item, err := apic.Secrets().GetMetadata(cmd.Context(), token, vaultURI, name)
			rt.record(vaultName, "get_secret_metadata", "secret", name, resultOf(err), "")
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				output.WriteSecretTable(rt.Writer(), []client.SecretItem{*item})
				return nil
			}
			return output.WriteObject(rt.Writer(), format, item)
		},
	}
	cmd.Flags().StringVar(&vault, "vault", "", "Vault name or URI")
	cmd.Flags().BoolVar(&showValue, "show-value", false, "Fetch and print the secret value")
	return cmd
}

func newSecretSetCommand() *cobra.Command {
	var (
		vault       string
		contentType string
		tags        []string
		expires     string
		notBefore   string
		disabled    bool
	)
	cmd := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Create a secret or a new version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			name, value := args[0], args[1]
			if err := validateItemName(name, "secret name"); err != nil {
				return err
			}
			if err := validateSecretValue(value); err != nil {
				return err
			}
			vaultURI, err := resolveVaultURI(vault)
			if err != nil {
				return err
			}
			tagMap, err := parseTags(tags)
			if err != nil {
				return err
			}

			req := client.CreateSecretRequest{Name: name, Value: value, Tags: tagMap}
			if contentType != "" {
				req.ContentType = &contentType
			}
			if expires != "" {
				req.Expires = &expires
			}
			if notBefore != "" {
				req.NotBefore = &notBefore
			}
			if disabled {
				enabled := false
				req.Enabled = &enabled
			}

			token, err := rt.token(cmd.Context(), auth.AudienceVault)
			if err != nil {
				return err
			}
			apic, err := rt.Client()
			if err != nil {
				return err
			}
			item, err := apic.Secrets().Set(cmd.Context(), token, vaultURI, req)
			rt.record(vaultNameFromURI(vaultURI), "set_secret", "secret", name, resultOf(err), "")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Secret %s updated\n", item.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&vault, "vault", "", "Vault name or URI")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content type hint")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag as key=value, repeatable")
	cmd.Flags().StringVar(&expires, "expires", "", "Expiry (RFC3339)")
	cmd.Flags().StringVar(&notBefore, "not-before", "", "Activation time (RFC3339)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the secret disabled")
	return cmd
}

func newSecretDeleteCommand() *cobra.Command {
	var vault string
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Soft-delete a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return secretLifecycleRun(cmd, vault, args[0], "delete_secret", "deleted",
				func(rt *runtimeState, token, vaultURI, name string) error {
					apic, err := rt.Client()
					if err != nil {
						return err
					}
					return apic.Secrets().Delete(cmd.Context(), token, vaultURI, name)
				})
		},
	}
	cmd.Flags().StringVar(&vault, "vault", "", "Vault name or URI")
	return cmd
}

func newSecretRecoverCommand() *cobra.Command {
	var vault string
	cmd := &cobra.Command{
		Use:   "recover <name>",
		Short: "Recover a soft-deleted secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return secretLifecycleRun(cmd, vault, args[0], "recover_secret", "recovered",
				func(rt *runtimeState, token, vaultURI, name string) error {
					apic, err := rt.Client()
					if err != nil {
						return err
					}
					return apic.Secrets().Recover(cmd.Context(), token, vaultURI, name)
				})
		},
	}
	cmd.Flags().StringVar(&vault, "vault", "", "Vault name or URI")
	return cmd
}

func newSecretPurgeCommand() *cobra.Command {
	var vault string
	cmd := &cobra.Command{
		Use:   "purge <name>",
		Short: "Permanently remove a deleted secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return secretLifecycleRun(cmd, vault, args[0], "purge_secret", "purged",
				func(rt *runtimeState, token, vaultURI, name string) error {
					apic, err := rt.Client()
					if err != nil {
						return err
					}
					return apic.Secrets().Purge(cmd.Context(), token, vaultURI, name)
				})
		},
	}
	cmd.Flags().StringVar(&vault, "vault", "", "Vault name or URI")
	return cmd
}

// secretLifecycleRun factors the shared shape of delete/recover/purge.
func secretLifecycleRun(cmd *cobra.Command, vault, name, action, pastTense string,
	op func(rt *runtimeState, token, vaultURI, name string) error) error {
	rt, err := getRuntime(cmd)
	if err != nil {
		return err
	}
	if err := validateItemName(name, "secret name"); err != nil {
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
	err = op(rt, token, vaultURI, name)
	rt.record(vaultNameFromURI(vaultURI), action, "secret", name, resultOf(err), "")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(rt.Writer(), "Secret %s %s\n", name, pastTense)
	return nil
}
