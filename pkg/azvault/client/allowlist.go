package client

import (
	"net/url"
	"strings"
)

const (
	managementHost = "management.azure.com"
	identityHost   = "login.microsoftonline.com"
)

// vaultHostSuffixes covers the public cloud plus sovereign-cloud variants.
var vaultHostSuffixes = []string{
	".vault.azure.net",
	".vault.usgovcloudapi.net",
	".vault.azure.cn",
}

// IsAllowedURL reports whether a URL targets an allowed Azure endpoint over
// HTTPS. Matching is suffix-based on the full host, so a lookalike such as
// vault.azure.net.attacker.test is rejected.
func IsAllowedURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "https" {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}
	if host == managementHost || host == identityHost {
		return true
	}
	return hasVaultSuffix(host)
}

// IsVaultURI reports whether a URL targets a Key Vault data-plane endpoint
// over HTTPS. Used to validate user-supplied vault URIs before they reach
// the data-plane services.
func IsVaultURI(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "https" {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}
	return hasVaultSuffix(host)
}

func hasVaultSuffix(host string) bool {
	for _, suffix := range vaultHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}
