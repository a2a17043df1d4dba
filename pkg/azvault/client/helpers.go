package client

import (
	"strings"
	"time"
)

// itemAttributes is the wire shape of Key Vault item attributes. Timestamps
// are Unix epoch seconds; missing fields stay nil.
type itemAttributes struct {
	Enabled   *bool  `json:"enabled"`
	Created   *int64 `json:"created"`
	Updated   *int64 `json:"updated"`
	Expires   *int64 `json:"exp"`
	NotBefore *int64 `json:"nbf"`
}

func (a itemAttributes) enabledOrDefault() bool {
	if a.Enabled == nil {
		return true
	}
	return *a.Enabled
}

// extractNameFromID pulls the entity name out of a Key Vault ID URL, e.g.
// https://demo.vault.azure.net/secrets/my-secret/v1 -> my-secret. Falls back
// to the last path segment when the entity marker is absent.
func extractNameFromID(id, entity string) string {
	parts := strings.Split(id, "/")
	for i, part := range parts {
		if part == entity && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// epochToRFC3339 converts an optional Unix timestamp to an RFC 3339 string.
func epochToRFC3339(epoch *int64) *string {
	if epoch == nil {
		return nil
	}
	formatted := time.Unix(*epoch, 0).UTC().Format(time.RFC3339)
	return &formatted
}
