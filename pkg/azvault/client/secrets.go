package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiVersionVaultData = "7.5"

type SecretService struct {
	client *Client
}

func (c *Client) Secrets() *SecretService {
	return &SecretService{client: c}
}

// secretBundle is the data-plane wire shape of a secret entry.
type secretBundle struct {
	ID          string            `json:"id"`
	Attributes  itemAttributes    `json:"attributes"`
	ContentType *string           `json:"contentType"`
	Tags        map[string]string `json:"tags"`
	Managed     *bool             `json:"managed"`
}

func parseSecretItem(raw json.RawMessage) (SecretItem, error) {
	var wire secretBundle
	if err := json.Unmarshal(raw, &wire); err != nil {
		return SecretItem{}, fmt.Errorf("malformed secret entry: %w", err)
	}
	return SecretItem{
		ID:          wire.ID,
		Name:        extractNameFromID(wire.ID, "secrets"),
		Enabled:     wire.Attributes.enabledOrDefault(),
		Created:     epochToRFC3339(wire.Attributes.Created),
		Updated:     epochToRFC3339(wire.Attributes.Updated),
		Expires:     epochToRFC3339(wire.Attributes.Expires),
		NotBefore:   epochToRFC3339(wire.Attributes.NotBefore),
		ContentType: wire.ContentType,
		Tags:        wire.Tags,
		Managed:     wire.Managed,
	}, nil
}

// List returns metadata for all secrets in the vault, following pagination.
func (s *SecretService) List(ctx context.Context, token, vaultURI string) ([]SecretItem, error) {
	endpoint := fmt.Sprintf("%s/secrets?api-version=%s", strings.TrimRight(vaultURI, "/"), apiVersionVaultData)
	raw, err := s.client.ListAll(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}
	items := make([]SecretItem, 0, len(raw))
	for _, entry := range raw {
		item, err := parseSecretItem(entry)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// GetMetadata fetches the latest version's metadata for a secret, without
// the value.
func (s *SecretService) GetMetadata(ctx context.Context, token, vaultURI, name string) (*SecretItem, error) {
	endpoint := fmt.Sprintf("%s/secrets/%s/versions?api-version=%s&maxresults=1",
		strings.TrimRight(vaultURI, "/"), url.PathEscape(name), apiVersionVaultData)
	body, err := s.client.RequestJSON(ctx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, err
	}
	var page listPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("malformed list response: %w", err)
	}
	if len(page.Value) == 0 {
		return nil, fmt.Errorf("secret metadata not found for %q", name)
	}
	item, err := parseSecretItem(page.Value[0])
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetValue fetches the actual secret value. Callers are expected to audit
// every use.
func (s *SecretService) GetValue(ctx context.Context, token, vaultURI, name string) (*SecretValue, error) {
	endpoint := fmt.Sprintf("%s/secrets/%s?api-version=%s",
		strings.TrimRight(vaultURI, "/"), url.PathEscape(name), apiVersionVaultData)
	body, err := s.client.RequestJSON(ctx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, err
	}
	var wire struct {
		Value string `json:"value"`
		ID    string `json:"id"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("malformed secret response: %w", err)
	}
	return &SecretValue{Value: wire.Value, ID: wire.ID, Name: name}, nil
}

// Set creates a secret or a new version of an existing one.
func (s *SecretService) Set(ctx context.Context, token, vaultURI string, req CreateSecretRequest) (*SecretItem, error) {
	endpoint := fmt.Sprintf("%s/secrets/%s?api-version=%s",
		strings.TrimRight(vaultURI, "/"), url.PathEscape(req.Name), apiVersionVaultData)

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	attributes := map[string]any{"enabled": enabled}
	if req.Expires != nil {
		exp, err := time.Parse(time.RFC3339, *req.Expires)
		if err != nil {
			return nil, fmt.Errorf("invalid expires timestamp: %w", err)
		}
		attributes["exp"] = exp.Unix()
	}
	if req.NotBefore != nil {
		nbf, err := time.Parse(time.RFC3339, *req.NotBefore)
		if err != nil {
			return nil, fmt.Errorf("invalid notBefore timestamp: %w", err)
		}
		attributes["nbf"] = nbf.Unix()
	}

	payload := map[string]any{
		"value":      req.Value,
		"attributes": attributes,
	}
	if req.ContentType != nil {
		payload["contentType"] = *req.ContentType
	}
	if req.Tags != nil {
		payload["tags"] = req.Tags
	}

	body, err := s.client.RequestJSON(ctx, http.MethodPut, endpoint, token, payload)
	if err != nil {
		return nil, err
	}
	item, err := parseSecretItem(body)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete soft-deletes a secret (recoverable while soft-delete retention
// lasts).
func (s *SecretService) Delete(ctx context.Context, token, vaultURI, name string) error {
	endpoint := fmt.Sprintf("%s/secrets/%s?api-version=%s",
		strings.TrimRight(vaultURI, "/"), url.PathEscape(name), apiVersionVaultData)
	_, err := s.client.RequestJSON(ctx, http.MethodDelete, endpoint, token, nil)
	return err
}

// Recover restores a soft-deleted secret.
func (s *SecretService) Recover(ctx context.Context, token, vaultURI, name string) error {
	endpoint := fmt.Sprintf("%s/deletedsecrets/%s/recover?api-version=%s",
		strings.TrimRight(vaultURI, "/"), url.PathEscape(name), apiVersionVaultData)
	_, err := s.client.RequestJSON(ctx, http.MethodPost, endpoint, token, nil)
	return err
}

// Purge permanently removes a deleted secret. Irreversible.
func (s *SecretService) Purge(ctx context.Context, token, vaultURI, name string) error {
	endpoint := fmt.Sprintf("%s/deletedsecrets/%s?api-version=%s",
		strings.TrimRight(vaultURI, "/"), url.PathEscape(name), apiVersionVaultData)
	_, err := s.client.RequestJSON(ctx, http.MethodDelete, endpoint, token, nil)
	return err
}
