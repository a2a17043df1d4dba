package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type CertificateService struct {
	client *Client
}

func (c *Client) Certificates() *CertificateService {
	return &CertificateService{client: c}
}

// List returns metadata for all X.509 certificates in the vault.
func (s *CertificateService) List(ctx context.Context, token, vaultURI string) ([]CertificateItem, error) {
	endpoint := fmt.Sprintf("%s/certificates?api-version=%s", strings.TrimRight(vaultURI, "/"), apiVersionVaultData)
	raw, err := s.client.ListAll(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	items := make([]CertificateItem, 0, len(raw))
	for _, entry := range raw {
		var wire struct {
			ID         string         `json:"id"`
			Thumbprint *string        `json:"x5t"`
			Attributes itemAttributes `json:"attributes"`
			Policy     struct {
				X509Props struct {
					Subject *string `json:"subject"`
				} `json:"x509_props"`
			} `json:"policy"`
			Tags map[string]string `json:"tags"`
		}
		if err := json.Unmarshal(entry, &wire); err != nil {
			return nil, fmt.Errorf("malformed certificate entry: %w", err)
		}
		items = append(items, CertificateItem{
			ID:         wire.ID,
			Name:       extractNameFromID(wire.ID, "certificates"),
			Enabled:    wire.Attributes.enabledOrDefault(),
			Created:    epochToRFC3339(wire.Attributes.Created),
			Updated:    epochToRFC3339(wire.Attributes.Updated),
			Expires:    epochToRFC3339(wire.Attributes.Expires),
			NotBefore:  epochToRFC3339(wire.Attributes.NotBefore),
			Subject:    wire.Policy.X509Props.Subject,
			Thumbprint: wire.Thumbprint,
			Tags:       wire.Tags,
		})
	}
	return items, nil
}
