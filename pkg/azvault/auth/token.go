package auth

import (
	"strings"
	"time"
)

// Audience is the logical API surface a token is scoped to.
type Audience string

const (
	AudienceManagement Audience = "management"
	AudienceVault      Audience = "vault"
)

// expirySkew is subtracted from a token's expiry before serving it from
// cache, to avoid races against network latency.
const expirySkew = 60 * time.Second

// Resource returns the audience's resource URL as understood by the Azure
// CLI's --resource flag.
func (a Audience) Resource() string {
	if a == AudienceVault {
		return "https://vault.azure.net"
	}
	return "https://management.azure.com/"
}

// Scopes returns the v2.0 endpoint scopes for minting a token for this
// audience. offline_access keeps refresh tokens flowing on every grant.
func (a Audience) Scopes() []string {
	if a == AudienceVault {
		return []string{"https://vault.azure.net/.default", "offline_access"}
	}
	return []string{"https://management.azure.com/.default", "openid", "profile", "offline_access"}
}

func (a Audience) scopeString() string {
	return strings.Join(a.Scopes(), " ")
}

// cacheEntry is one audience's cached token. Only the management entry ever
// carries a refresh token.
type cacheEntry struct {
	AccessToken  string
	Expiry       time.Time
	RefreshToken string
}

// usable reports whether the cached access token can still be served, with
// the safety margin applied.
func (e cacheEntry) usable(now time.Time) bool {
	return e.AccessToken != "" && now.Before(e.Expiry.Add(-expirySkew))
}

// AuthState is the authentication status surfaced to the UI layer.
type AuthState struct {
	SignedIn bool    `json:"signed_in"`
	UserName *string `json:"user_name"`
	TenantID *string `json:"tenant_id"`
}
