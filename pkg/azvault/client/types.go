package client

// Typed records returned to callers. JSON tags are camelCase to match the
// shapes the UI consumes.

// Tenant is an Azure AD tenant descriptor from the management plane.
type Tenant struct {
	ID          string  `json:"id"`
	TenantID    string  `json:"tenantId"`
	DisplayName *string `json:"displayName,omitempty"`
}

// Subscription is an Azure subscription descriptor.
type Subscription struct {
	SubscriptionID string `json:"subscriptionId"`
	DisplayName    string `json:"displayName"`
	State          string `json:"state"`
	TenantID       string `json:"tenantId"`
}

// KeyVaultInfo is Key Vault resource metadata from the management plane.
type KeyVaultInfo struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Location          string            `json:"location"`
	ResourceGroup     string            `json:"resourceGroup"`
	VaultURI          string            `json:"vaultUri"`
	Tags              map[string]string `json:"tags,omitempty"`
	SoftDeleteEnabled *bool             `json:"softDeleteEnabled,omitempty"`
}

// SecretItem is secret metadata; it never carries the secret value.
type SecretItem struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Enabled     bool              `json:"enabled"`
	Created     *string           `json:"created,omitempty"`
	Updated     *string           `json:"updated,omitempty"`
	Expires     *string           `json:"expires,omitempty"`
	NotBefore   *string           `json:"notBefore,omitempty"`
	ContentType *string           `json:"contentType,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Managed     *bool             `json:"managed,omitempty"`
}

// SecretValue is a secret value fetched on demand from the data plane.
type SecretValue struct {
	Value string `json:"value"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

// KeyItem is cryptographic key metadata.
type KeyItem struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Enabled   bool              `json:"enabled"`
	Created   *string           `json:"created,omitempty"`
	Updated   *string           `json:"updated,omitempty"`
	Expires   *string           `json:"expires,omitempty"`
	NotBefore *string           `json:"notBefore,omitempty"`
	KeyType   *string           `json:"keyType,omitempty"`
	KeyOps    []string          `json:"keyOps,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	Managed   *bool             `json:"managed,omitempty"`
}

// CertificateItem is X.509 certificate metadata.
type CertificateItem struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Enabled    bool              `json:"enabled"`
	Created    *string           `json:"created,omitempty"`
	Updated    *string           `json:"updated,omitempty"`
	Expires    *string           `json:"expires,omitempty"`
	NotBefore  *string           `json:"notBefore,omitempty"`
	Subject    *string           `json:"subject,omitempty"`
	Thumbprint *string           `json:"thumbprint,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// CreateSecretRequest is the payload for creating or versioning a secret.
type CreateSecretRequest struct {
	Name        string            `json:"name"`
	Value       string            `json:"value"`
	ContentType *string           `json:"contentType,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Enabled     *bool             `json:"enabled,omitempty"`
	Expires     *string           `json:"expires,omitempty"`
	NotBefore   *string           `json:"notBefore,omitempty"`
}
