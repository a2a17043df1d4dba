package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type KeyService struct {
	client *Client
}

func (c *Client) Keys() *KeyService {
	return &KeyService{client: c}
}

// List returns metadata for all cryptographic keys in the vault.
func (s *KeyService) List(ctx context.Context, token, vaultURI string) ([]KeyItem, error) {
	endpoint := fmt.Sprintf("%s/keys?api-version=%s", strings.TrimRight(vaultURI, "/"), apiVersionVaultData)
	raw, err := s.client.ListAll(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	items := make([]KeyItem, 0, len(raw))
	for _, entry := range raw {
		var wire struct {
			KID        string            `json:"kid"`
			KeyType    *string           `json:"kty"`
			KeyOps     []string          `json:"key_ops"`
			Attributes itemAttributes    `json:"attributes"`
			Tags       map[string]string `json:"tags"`
			Managed    *bool             `json:"managed"`
		}
		if err := json.Unmarshal(entry, &wire); err != nil {
			return nil, fmt.Errorf("malformed key entry: %w", err)
		}
		items = append(items, KeyItem{
			ID:        wire.KID,
			Name:      extractNameFromID(wire.KID, "keys"),
			Enabled:   wire.Attributes.enabledOrDefault(),
			Created:   epochToRFC3339(wire.Attributes.Created),
			Updated:   epochToRFC3339(wire.Attributes.Updated),
			Expires:   epochToRFC3339(wire.Attributes.Expires),
			NotBefore: epochToRFC3339(wire.Attributes.NotBefore),
			KeyType:   wire.KeyType,
			KeyOps:    wire.KeyOps,
			Tags:      wire.Tags,
			Managed:   wire.Managed,
		})
	}
	return items, nil
}
