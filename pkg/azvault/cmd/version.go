package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/azvault/azvault/pkg/azvault/version"
)

func NewVersionCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show azvault version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetBuildInfo()

			rt, _ := getRuntime(cmd)
			writer := cmd.OutOrStdout()
			if rt != nil {
				writer = rt.Writer()
			}

			switch outputFormat {
			case "json":
				encoder := json.NewEncoder(writer)
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			case "yaml":
				data, err := yaml.Marshal(info)
				if err != nil {
					return fmt.Errorf("failed to marshal to YAML: %w", err)
				}
				_, _ = fmt.Fprint(writer, string(data))
				return nil
			default:
				_, _ = fmt.Fprintf(writer, "azvault %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildDate)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: json, yaml")

	return cmd
}
