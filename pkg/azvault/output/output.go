// Package output renders command results as tables, JSON, YAML, or CSV.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatTable, FormatJSON, FormatYAML, FormatCSV:
		return Format(raw), nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", raw)
	}
}

func WriteObject(w io.Writer, format Format, obj any) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(obj)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatTable:
		return fmt.Errorf("table format requires a specific formatter")
	case FormatCSV:
		return fmt.Errorf("csv format requires a slice, use WriteCSV")
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
