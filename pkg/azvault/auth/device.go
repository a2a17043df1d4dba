package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Non-fatal poll signals from the device-code grant. Callers sleep and poll
// again; on ErrSlowDown the interval grows by five seconds per provider
// convention.
var (
	ErrAuthorizationPending = errors.New("authorization pending")
	ErrSlowDown             = errors.New("slow down")
)

// DeviceCodeSession is the ephemeral state of one device-code flow. Polling
// must stop once ExpiresIn seconds elapse.
type DeviceCodeSession struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
	Message         string `json:"message"`
}

// tokenResponse is the identity endpoint's reply to any token-grant post.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

// tokenEndpointError is a definitive rejection from the token endpoint, as
// opposed to a transport failure.
type tokenEndpointError struct {
	Code        string
	Description string
}

func (e *tokenEndpointError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("token endpoint error %s: %s", e.Code, e.Description)
	}
	return "token endpoint error " + e.Code
}

// StartDeviceCodeFlow requests a device/user code pair scoped to the
// management audience plus offline access. Provider-side errors are
// surfaced verbatim, wrapped.
func (m *Manager) StartDeviceCodeFlow(ctx context.Context) (*DeviceCodeSession, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/devicecode", m.authority, m.Tenant())
	values := url.Values{}
	values.Set("client_id", m.clientID)
	values.Set("scope", AudienceManagement.scopeString())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device authorization request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("device authorization failed: %s", strings.TrimSpace(string(body)))
	}
	var session DeviceCodeSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to parse device authorization response: %w", err)
	}
	return &session, nil
}

// PollDeviceCode performs one poll of the device-code grant. It returns
// ErrAuthorizationPending or ErrSlowDown while the user has not finished
// signing in; any other provider error is fatal. On success the management
// cache is updated and the session persisted.
func (m *Manager) PollDeviceCode(ctx context.Context, deviceCode string) (*oauth2.Token, error) {
	tenant := m.Tenant()
	values := url.Values{}
	values.Set("grant_type", "urn:ietf:params:oauth:grant-type:device_code")
	values.Set("device_code", deviceCode)
	values.Set("client_id", m.clientID)

	payload, err := m.postTokenForm(ctx, tenant, values)
	if err != nil {
		var endpointErr *tokenEndpointError
		if errors.As(err, &endpointErr) {
			switch endpointErr.Code {
			case "authorization_pending":
				return nil, ErrAuthorizationPending
			case "slow_down":
				return nil, ErrSlowDown
			}
		}
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    payload.TokenType,
		Expiry:       time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}

	m.mu.Lock()
	m.mgmt = cacheEntry{
		AccessToken:  token.AccessToken,
		Expiry:       token.Expiry,
		RefreshToken: token.RefreshToken,
	}
	m.mu.Unlock()

	if m.store != nil && token.RefreshToken != "" {
		if err := m.store.Save(Session{TenantID: tenant, RefreshToken: token.RefreshToken}); err != nil {
			m.log.Debug("failed to persist session after device login", zap.Error(err))
		}
	}
	return token, nil
}

// Login runs the full device-code flow: start, prompt, then poll at the
// advertised interval until success, a fatal error, or the code expires.
// prompt receives the session so the caller can display the user code and
// verification URL.
func (m *Manager) Login(ctx context.Context, prompt func(DeviceCodeSession)) (*oauth2.Token, error) {
	session, err := m.StartDeviceCodeFlow(ctx)
	if err != nil {
		return nil, err
	}
	if prompt != nil {
		prompt(*session)
	}
	if session.VerificationURI != "" && !strings.EqualFold(os.Getenv("AZVAULT_NO_BROWSER"), "true") {
		_ = openBrowser(session.VerificationURI)
	}

	interval := time.Duration(session.Interval) * time.Second
	if interval == 0 {
		interval = 5 * time.Second
	}
	deadline := time.Now().Add(time.Duration(session.ExpiresIn) * time.Second)

	for {
		if time.Now().After(deadline) {
			return nil, errors.New("device code expired")
		}
		token, err := m.PollDeviceCode(ctx, session.DeviceCode)
		if err != nil {
			if errors.Is(err, ErrAuthorizationPending) {
				if sleepErr := sleepCtx(ctx, interval); sleepErr != nil {
					return nil, sleepErr
				}
				continue
			}
			if errors.Is(err, ErrSlowDown) {
				interval += 5 * time.Second
				if sleepErr := sleepCtx(ctx, interval); sleepErr != nil {
					return nil, sleepErr
				}
				continue
			}
			return nil, err
		}
		return token, nil
	}
}

// postTokenForm posts a grant to the token endpoint and decodes the reply.
// OAuth errors arrive as JSON bodies on 4xx statuses, so the body is
// decoded regardless of status and a set error field wins.
func (m *Manager) postTokenForm(ctx context.Context, tenant string, values url.Values) (*tokenResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", m.authority, tenant)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if payload.Error != "" {
		return nil, &tokenEndpointError{Code: payload.Error, Description: payload.ErrorDesc}
	}
	if payload.AccessToken == "" {
		return nil, errors.New("token response did not contain access_token")
	}
	return &payload, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
