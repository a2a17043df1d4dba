package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azvault/azvault/pkg/azvault/client"
)

func TestParseFormat(t *testing.T) {
	for _, raw := range []string{"table", "json", "yaml", "csv"} {
		format, err := ParseFormat(raw)
		require.NoError(t, err)
		require.Equal(t, Format(raw), format)
	}

	format, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("xml")
	require.ErrorContains(t, err, "unknown output format")
}

func TestWriteObjectJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteObject(&buf, FormatJSON, map[string]string{"name": "myvault"})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"myvault"}`, buf.String())
}

func TestWriteObjectYAML(t *testing.T) {
	var buf bytes.Buffer
	err := WriteObject(&buf, FormatYAML, map[string]string{"name": "myvault"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "name: myvault")
}

func TestWriteObjectRejectsTableAndCSV(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, WriteObject(&buf, FormatTable, nil))
	require.Error(t, WriteObject(&buf, FormatCSV, nil))
	require.Error(t, WriteObject(&buf, Format("xml"), nil))
}

func TestWriteSecretTable(t *testing.T) {
	contentType := "text/plain"
	updated := "2026-01-01T00:00:00Z"
	secrets := []client.SecretItem{
		{Name: "db-password", Enabled: true, ContentType: &contentType, Updated: &updated},
		{Name: "api-key", Enabled: false},
	}

	var buf bytes.Buffer
	WriteSecretTable(&buf, secrets)

	out := buf.String()
	require.Contains(t, out, "NAME")
	require.Contains(t, out, "db-password")
	require.Contains(t, out, "text/plain")
	require.Contains(t, out, "api-key")
	require.Contains(t, out, "false")
}

func TestWriteVaultTable(t *testing.T) {
	enabled := true
	vaults := []client.KeyVaultInfo{
		{Name: "v1", Location: "westeurope", ResourceGroup: "rg", VaultURI: "https://v1.vault.azure.net", SoftDeleteEnabled: &enabled},
		{Name: "v2", Location: "eastus", VaultURI: "https://v2.vault.azure.net"},
	}

	var buf bytes.Buffer
	WriteVaultTable(&buf, vaults)

	out := buf.String()
	require.Contains(t, out, "v1")
	require.Contains(t, out, "https://v1.vault.azure.net")
	require.Contains(t, out, "true")
	require.Contains(t, out, "-")
}
