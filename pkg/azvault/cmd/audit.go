package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/azvault/azvault/pkg/azvault/output"
)

func NewAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the local activity log",
	}
	cmd.AddCommand(
		newAuditListCommand(),
		newAuditExportCommand(),
		newAuditClearCommand(),
	)
	return cmd
}

func newAuditListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent audit entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			auditor, err := rt.Audit()
			if err != nil {
				return err
			}
			entries := auditor.Entries(limit)

			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			switch format {
			case output.FormatTable:
				output.WriteAuditTable(rt.Writer(), entries)
				return nil
			case output.FormatCSV:
				return output.WriteCSV(rt.Writer(), entries)
			default:
				return output.WriteObject(rt.Writer(), format, entries)
			}
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to show (default 100)")
	return cmd
}

func newAuditExportCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the sanitized audit log as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			auditor, err := rt.Audit()
			if err != nil {
				return err
			}
			blob, err := auditor.Export()
			if err != nil {
				return err
			}
			if file == "" {
				_, _ = fmt.Fprintln(rt.Writer(), blob)
				return nil
			}
			if err := os.WriteFile(file, []byte(blob), 0o600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Audit log exported to %s\n", file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Write to file instead of stdout")
	return cmd
}

func newAuditClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all audit entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			auditor, err := rt.Audit()
			if err != nil {
				return err
			}
			auditor.Clear()
			_, _ = fmt.Fprintln(rt.Writer(), "Audit log cleared")
			return nil
		},
	}
}
