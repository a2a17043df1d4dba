package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	apiVersionTenants       = "2022-12-01"
	apiVersionSubscriptions = "2022-12-01"
	apiVersionResources     = "2021-04-01"
	apiVersionVaultMgmt     = "2023-07-01"
)

type TenantService struct {
	client *Client
}

func (c *Client) Tenants() *TenantService {
	return &TenantService{client: c}
}

// List returns the Azure AD tenants accessible to the authenticated identity.
func (s *TenantService) List(ctx context.Context, token string) ([]Tenant, error) {
	endpoint := fmt.Sprintf("%s/tenants?api-version=%s", s.client.managementBase, apiVersionTenants)
	raw, err := s.client.ListAll(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	tenants := make([]Tenant, 0, len(raw))
	for _, item := range raw {
		var wire struct {
			ID            string  `json:"id"`
			TenantID      string  `json:"tenantId"`
			DisplayName   *string `json:"displayName"`
			DefaultDomain *string `json:"defaultDomain"`
		}
		if err := json.Unmarshal(item, &wire); err != nil {
			return nil, fmt.Errorf("malformed tenant entry: %w", err)
		}
		name := wire.DisplayName
		if name == nil {
			name = wire.DefaultDomain
		}
		tenants = append(tenants, Tenant{ID: wire.ID, TenantID: wire.TenantID, DisplayName: name})
	}
	return tenants, nil
}

type SubscriptionService struct {
	client *Client
}

func (c *Client) Subscriptions() *SubscriptionService {
	return &SubscriptionService{client: c}
}

// List returns the subscriptions accessible to the authenticated identity.
func (s *SubscriptionService) List(ctx context.Context, token string) ([]Subscription, error) {
	endpoint := fmt.Sprintf("%s/subscriptions?api-version=%s", s.client.managementBase, apiVersionSubscriptions)
	raw, err := s.client.ListAll(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	subs := make([]Subscription, 0, len(raw))
	for _, item := range raw {
		var wire struct {
			SubscriptionID string `json:"subscriptionId"`
			DisplayName    string `json:"displayName"`
			State          string `json:"state"`
			TenantID       string `json:"tenantId"`
			HomeTenantID   string `json:"homeTenantId"`
		}
		if err := json.Unmarshal(item, &wire); err != nil {
			return nil, fmt.Errorf("malformed subscription entry: %w", err)
		}
		tenantID := wire.TenantID
		if tenantID == "" {
			tenantID = wire.HomeTenantID
		}
		subs = append(subs, Subscription{
			SubscriptionID: wire.SubscriptionID,
			DisplayName:    wire.DisplayName,
			State:          wire.State,
			TenantID:       tenantID,
		})
	}
	return subs, nil
}

type VaultService struct {
	client *Client
}

func (c *Client) Vaults() *VaultService {
	return &VaultService{client: c}
}

// List returns the Key Vault resources within a subscription, including a
// best-effort soft-delete state lookup per vault.
func (s *VaultService) List(ctx context.Context, token, subscriptionID string) ([]KeyVaultInfo, error) {
	params := url.Values{}
	params.Set("$filter", "resourceType eq 'Microsoft.KeyVault/vaults'")
	params.Set("api-version", apiVersionResources)
	endpoint := fmt.Sprintf("%s/subscriptions/%s/resources?%s",
		s.client.managementBase, url.PathEscape(subscriptionID), params.Encode())

	raw, err := s.client.ListAll(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	vaults := make([]KeyVaultInfo, 0, len(raw))
	for _, item := range raw {
		var wire struct {
			ID       string            `json:"id"`
			Name     string            `json:"name"`
			Location string            `json:"location"`
			Tags     map[string]string `json:"tags"`
		}
		if err := json.Unmarshal(item, &wire); err != nil {
			return nil, fmt.Errorf("malformed vault entry: %w", err)
		}

		softDelete, err := s.softDeleteState(ctx, token, wire.ID)
		if err != nil {
			s.client.log.Debug("soft-delete lookup failed",
				zap.String("vault", wire.Name), zap.Error(err))
			softDelete = nil
		}

		vaults = append(vaults, KeyVaultInfo{
			ID:                wire.ID,
			Name:              wire.Name,
			Location:          wire.Location,
			ResourceGroup:     resourceGroupFromID(wire.ID),
			VaultURI:          fmt.Sprintf("https://%s.vault.azure.net", wire.Name),
			Tags:              wire.Tags,
			SoftDeleteEnabled: softDelete,
		})
	}
	return vaults, nil
}

// softDeleteState fetches vault-level properties to determine soft-delete
// state. The vault ID is an ARM resource path rooted at the management base.
func (s *VaultService) softDeleteState(ctx context.Context, token, vaultID string) (*bool, error) {
	endpoint := fmt.Sprintf("%s%s?api-version=%s", s.client.managementBase, vaultID, apiVersionVaultMgmt)
	body, err := s.client.RequestJSON(ctx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, err
	}
	var wire struct {
		Properties struct {
			EnableSoftDelete *bool `json:"enableSoftDelete"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("malformed vault properties: %w", err)
	}
	return wire.Properties.EnableSoftDelete, nil
}

// resourceGroupFromID extracts the resource group from an ARM resource ID.
func resourceGroupFromID(id string) string {
	_, after, found := strings.Cut(id, "/resourceGroups/")
	if !found {
		return ""
	}
	group, _, _ := strings.Cut(after, "/")
	return group
}
