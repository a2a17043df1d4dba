package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveVaultURI(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"full URI", "https://myvault.vault.azure.net", "https://myvault.vault.azure.net", false},
		{"trailing slash trimmed", "https://myvault.vault.azure.net/", "https://myvault.vault.azure.net", false},
		{"bare name expanded", "myvault", "https://myvault.vault.azure.net", false},
		{"sovereign cloud URI", "https://myvault.vault.azure.cn", "https://myvault.vault.azure.cn", false},
		{"empty", "", "", true},
		{"http URI", "http://myvault.vault.azure.net", "", true},
		{"lookalike host", "https://myvault.vault.azure.net.attacker.test", "", true},
		{"name with invalid chars", "my_vault!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveVaultURI(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidateItemName(t *testing.T) {
	require.NoError(t, validateItemName("db-password", "secret name"))
	require.NoError(t, validateItemName("A1", "secret name"))
	require.NoError(t, validateItemName(strings.Repeat("a", 127), "secret name"))

	require.Error(t, validateItemName("", "secret name"))
	require.Error(t, validateItemName(strings.Repeat("a", 128), "secret name"))
	require.Error(t, validateItemName("has space", "secret name"))
	require.Error(t, validateItemName("semi;colon", "secret name"))
	require.Error(t, validateItemName("under_score", "secret name"))
}

func TestValidateSecretValue(t *testing.T) {
	require.NoError(t, validateSecretValue("v"))
	require.NoError(t, validateSecretValue(strings.Repeat("x", maxSecretValueLength)))

	require.Error(t, validateSecretValue(""))
	require.Error(t, validateSecretValue(strings.Repeat("x", maxSecretValueLength+1)))
}

func TestVaultNameFromURI(t *testing.T) {
	require.Equal(t, "myvault", vaultNameFromURI("https://myvault.vault.azure.net"))
	require.Equal(t, "gov", vaultNameFromURI("https://gov.vault.usgovcloudapi.net/"))
	require.Equal(t, "not a url", vaultNameFromURI("not a url"))
}

func TestParseTags(t *testing.T) {
	tags, err := parseTags([]string{"env=prod", "team=platform", "empty="})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"env": "prod", "team": "platform", "empty": ""}, tags)

	tags, err = parseTags(nil)
	require.NoError(t, err)
	require.Nil(t, tags)

	_, err = parseTags([]string{"no-separator"})
	require.Error(t, err)

	_, err = parseTags([]string{"=value"})
	require.Error(t, err)
}
