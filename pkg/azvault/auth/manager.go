package auth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// TenantDefault is the sentinel meaning "any tenant the identity belongs
// to", as understood by the identity provider.
const TenantDefault = "organizations"

const defaultAuthority = "https://login.microsoftonline.com"

// defaultClientID is the well-known public client ID of the Azure CLI,
// which allows device-code sign-in without app registration.
const defaultClientID = "04b07795-8ddb-461a-bbee-02f9e1bf7b46"

// ErrNotAuthenticated means no token-mint path succeeded; the user must run
// the interactive login or `az login`.
var ErrNotAuthenticated = errors.New("not authenticated: run 'azvault auth login' or 'az login' and retry")

// Manager owns the tenant preference and the per-audience token caches, and
// decides how to produce a token for each request: cache, refresh grant,
// or CLI fallback. Safe for concurrent use; the lock guards state access
// only, never a network call, so concurrent callers may both mint and the
// last writer wins.
type Manager struct {
	mu     sync.RWMutex
	tenant string
	mgmt   cacheEntry
	vault  cacheEntry

	store      SessionStore
	cli        CLITokenSource
	httpClient *http.Client
	authority  string
	clientID   string
	log        *zap.Logger
}

type ManagerOption func(*Manager) error

func NewManager(opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		tenant:    TenantDefault,
		authority: defaultAuthority,
		clientID:  defaultClientID,
		log:       zap.NewNop(),
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			},
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.store != nil {
		m.restoreSession()
	}
	return m, nil
}

func WithSessionStore(store SessionStore) ManagerOption {
	return func(m *Manager) error {
		m.store = store
		return nil
	}
}

func WithCLITokenSource(cli CLITokenSource) ManagerOption {
	return func(m *Manager) error {
		m.cli = cli
		return nil
	}
}

func WithAuthority(authority string) ManagerOption {
	return func(m *Manager) error {
		if authority == "" {
			return errors.New("authority is required")
		}
		m.authority = strings.TrimRight(authority, "/")
		return nil
	}
}

func WithClientID(clientID string) ManagerOption {
	return func(m *Manager) error {
		if clientID == "" {
			return errors.New("client-id is required")
		}
		m.clientID = clientID
		return nil
	}
}

func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *Manager) error {
		if log == nil {
			return errors.New("logger is nil")
		}
		m.log = log
		return nil
	}
}

func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) error {
		if client == nil {
			return errors.New("http client is nil")
		}
		m.httpClient = client
		return nil
	}
}

// restoreSession loads the persisted session at startup so a refresh-based
// mint can succeed without interactive sign-in.
func (m *Manager) restoreSession() {
	session, ok, err := m.store.Load()
	if err != nil {
		m.log.Debug("failed to load persisted session", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	m.tenant = SanitizeTenant(session.TenantID)
	m.mgmt.RefreshToken = session.RefreshToken
}

// Tenant returns the currently preferred tenant.
func (m *Manager) Tenant() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tenant
}

// Token produces an access token for the audience, trying in order: the
// cache, a refresh grant, and the CLI fallback. Individual path failures
// are logged and collapsed into ErrNotAuthenticated.
func (m *Manager) Token(ctx context.Context, audience Audience) (string, error) {
	m.mu.RLock()
	entry := m.entry(audience)
	refreshToken := m.mgmt.RefreshToken
	tenant := m.tenant
	m.mu.RUnlock()

	if entry.usable(time.Now()) {
		return entry.AccessToken, nil
	}

	if refreshToken != "" {
		token, err := m.refreshGrant(ctx, audience, tenant, refreshToken)
		if err == nil {
			m.storeMinted(audience, tenant, token)
			return token.AccessToken, nil
		}
		m.log.Debug("refresh grant failed",
			zap.String("audience", string(audience)), zap.Error(err))
		var endpointErr *tokenEndpointError
		if errors.As(err, &endpointErr) {
			// The token endpoint rejected the refresh token; never retry
			// it verbatim.
			m.dropRefreshToken()
		}
	}

	if m.cli != nil {
		cliTenant := tenant
		if cliTenant == TenantDefault {
			cliTenant = ""
		}
		accessToken, err := m.cli.Mint(ctx, audience.Resource(), cliTenant)
		if err == nil && accessToken != "" {
			return accessToken, nil
		}
		m.log.Debug("CLI token mint failed",
			zap.String("audience", string(audience)), zap.Error(err))
	}

	return "", ErrNotAuthenticated
}

// entry returns a copy of the audience's cache entry. Callers must hold the
// lock.
func (m *Manager) entry(audience Audience) cacheEntry {
	if audience == AudienceVault {
		return m.vault
	}
	return m.mgmt
}

// refreshGrant mints a token for the audience using the stored refresh
// token, scoped to the current tenant. The scope parameter steers the new
// access token toward the requested audience; refresh tokens themselves are
// audience-agnostic.
func (m *Manager) refreshGrant(ctx context.Context, audience Audience, tenant, refreshToken string) (*oauth2.Token, error) {
	values := url.Values{}
	values.Set("grant_type", "refresh_token")
	values.Set("refresh_token", refreshToken)
	values.Set("client_id", m.clientID)
	values.Set("scope", audience.scopeString())

	payload, err := m.postTokenForm(ctx, tenant, values)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    payload.TokenType,
		Expiry:       time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}

// storeMinted writes a freshly minted token into the audience's cache and
// rotates the persisted refresh token when the response carried a new one.
// The refresh token always lives on the management entry, whichever
// audience was requested.
func (m *Manager) storeMinted(audience Audience, tenant string, token *oauth2.Token) {
	m.mu.Lock()
	entry := cacheEntry{AccessToken: token.AccessToken, Expiry: token.Expiry}
	if audience == AudienceVault {
		m.vault = entry
	} else {
		entry.RefreshToken = m.mgmt.RefreshToken
		m.mgmt = entry
	}
	rotated := token.RefreshToken != "" && token.RefreshToken != m.mgmt.RefreshToken
	if rotated {
		m.mgmt.RefreshToken = token.RefreshToken
	}
	refreshToken := m.mgmt.RefreshToken
	m.mu.Unlock()

	if rotated && m.store != nil {
		if err := m.store.Save(Session{TenantID: tenant, RefreshToken: refreshToken}); err != nil {
			m.log.Debug("failed to persist rotated session", zap.Error(err))
		}
	}
}

// dropRefreshToken forgets a refresh token the token endpoint rejected and
// deletes the persisted session.
func (m *Manager) dropRefreshToken() {
	m.mu.Lock()
	m.mgmt.RefreshToken = ""
	m.mu.Unlock()
	if m.store != nil {
		if err := m.store.Delete(); err != nil {
			m.log.Debug("failed to delete persisted session", zap.Error(err))
		}
	}
}

// SetTenant replaces the tenant preference. The vault cache is always
// invalidated; the management access token is invalidated too, but an
// existing refresh token is carried forward and re-persisted under the new
// tenant (if the provider scopes refresh tokens per tenant, the next
// refresh fails definitively and the session is dropped then).
func (m *Manager) SetTenant(raw string) {
	tenant := SanitizeTenant(raw)

	m.mu.Lock()
	m.tenant = tenant
	m.vault = cacheEntry{}
	m.mgmt.AccessToken = ""
	m.mgmt.Expiry = time.Time{}
	refreshToken := m.mgmt.RefreshToken
	m.mu.Unlock()

	if m.store == nil {
		return
	}
	if refreshToken != "" {
		if err := m.store.Save(Session{TenantID: tenant, RefreshToken: refreshToken}); err != nil {
			m.log.Debug("failed to persist session under new tenant", zap.Error(err))
		}
	} else {
		if err := m.store.Delete(); err != nil {
			m.log.Debug("failed to delete persisted session", zap.Error(err))
		}
	}
}

// SanitizeTenant reduces a tenant identifier to hex digits and hyphens (the
// character set of a tenant GUID), or the literal default sentinel. Inputs
// with no surviving characters collapse to the sentinel, so the value is
// safe to pass as a command argument to the CLI fallback.
func SanitizeTenant(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == TenantDefault {
		return TenantDefault
	}
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return TenantDefault
	}
	return b.String()
}

// SignOut clears both cache entries and deletes the persisted session. An
// external CLI session is out of this app's control and stays untouched.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.mgmt = cacheEntry{}
	m.vault = cacheEntry{}
	m.tenant = TenantDefault
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Delete(); err != nil {
			m.log.Debug("failed to delete persisted session", zap.Error(err))
		}
	}
}

// IsSignedIn reports whether a management token can currently be produced
// or a persisted session exists. Best effort: it may perform a network
// mint.
func (m *Manager) IsSignedIn(ctx context.Context) bool {
	if _, err := m.Token(ctx, AudienceManagement); err == nil {
		return true
	}
	if m.store != nil {
		if _, ok, err := m.store.Load(); err == nil && ok {
			return true
		}
	}
	return false
}

// Status returns the signed-in state, tenant, and best-effort user name
// decoded from the cached access token's claims.
func (m *Manager) Status(ctx context.Context) AuthState {
	state := AuthState{SignedIn: m.IsSignedIn(ctx)}
	if !state.SignedIn {
		return state
	}

	m.mu.RLock()
	tenant := m.tenant
	accessToken := m.mgmt.AccessToken
	m.mu.RUnlock()

	state.TenantID = &tenant
	if name := userNameFromToken(accessToken); name != "" {
		state.UserName = &name
	}
	return state
}

// userNameFromToken extracts a display identity from unverified JWT claims.
// The token was just minted by the provider; claims are informational only.
func userNameFromToken(accessToken string) string {
	if accessToken == "" {
		return ""
	}
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return ""
	}
	for _, key := range []string{"email", "preferred_username", "upn", "sub"} {
		if value, ok := claims[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
