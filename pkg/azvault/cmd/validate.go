package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/azvault/azvault/pkg/azvault/client"
)

const (
	maxItemNameLength    = 127
	maxSecretValueLength = 25000
)

// resolveVaultURI accepts either a full vault URI or a bare vault name and
// returns a validated HTTPS vault URI.
func resolveVaultURI(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("vault is required")
	}
	if !strings.Contains(raw, "://") {
		if err := validateItemName(raw, "vault name"); err != nil {
			return "", err
		}
		raw = fmt.Sprintf("https://%s.vault.azure.net", raw)
	}
	if !client.IsVaultURI(raw) {
		return "", fmt.Errorf("not an allowed vault URI: %s", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// validateItemName enforces the Key Vault object-name rules: 1 to 127
// characters, alphanumeric and hyphen only.
func validateItemName(name, label string) error {
	if name == "" {
		return fmt.Errorf("%s is required", label)
	}
	if len(name) > maxItemNameLength {
		return fmt.Errorf("%s exceeds %d characters", label, maxItemNameLength)
	}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			continue
		}
		return fmt.Errorf("%s may only contain letters, digits, and hyphens", label)
	}
	return nil
}

func validateSecretValue(value string) error {
	if value == "" {
		return errors.New("secret value is required")
	}
	if len(value) > maxSecretValueLength {
		return fmt.Errorf("secret value exceeds %d characters", maxSecretValueLength)
	}
	return nil
}

// vaultNameFromURI extracts the vault name (first host label) for audit
// attribution. Falls back to the raw input when parsing fails.
func vaultNameFromURI(vaultURI string) string {
	u, err := url.Parse(vaultURI)
	if err != nil || u.Hostname() == "" {
		return vaultURI
	}
	name, _, _ := strings.Cut(u.Hostname(), ".")
	return name
}

// parseTags turns repeated key=value flags into a tag map.
func parseTags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid tag %q, expected key=value", pair)
		}
		tags[key] = value
	}
	return tags, nil
}
