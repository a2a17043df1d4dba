package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAllowedURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		allowed bool
	}{
		{"management plane", "https://management.azure.com/tenants?api-version=2022-12-01", true},
		{"identity endpoint", "https://login.microsoftonline.com/organizations/oauth2/v2.0/token", true},
		{"public cloud vault", "https://myvault.vault.azure.net/secrets?api-version=7.5", true},
		{"gov cloud vault", "https://myvault.vault.usgovcloudapi.net/secrets", true},
		{"china cloud vault", "https://myvault.vault.azure.cn/secrets", true},
		{"http management", "http://management.azure.com/tenants", false},
		{"http vault", "http://myvault.vault.azure.net/secrets", false},
		{"lookalike suffix host", "https://myvault.vault.azure.net.attacker.test/secrets", false},
		{"lookalike subdomain", "https://management.azure.com.evil.test/tenants", false},
		{"arbitrary host", "https://example.com/", false},
		{"bare vault domain", "https://vault.azure.net/", false},
		{"empty", "", false},
		{"garbage", "://not-a-url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.allowed, IsAllowedURL(tt.url))
		})
	}
}

func TestIsVaultURI(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{"public cloud vault", "https://myvault.vault.azure.net", true},
		{"sovereign vault", "https://myvault.vault.azure.cn", true},
		{"management plane is not a vault", "https://management.azure.com", false},
		{"identity endpoint is not a vault", "https://login.microsoftonline.com", false},
		{"http vault", "http://myvault.vault.azure.net", false},
		{"lookalike", "https://myvault.vault.azure.net.attacker.test", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.valid, IsVaultURI(tt.url))
		})
	}
}
