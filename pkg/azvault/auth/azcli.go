package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
)

// CLITokenSource mints a token for an allowlisted resource by delegating to
// an external program that performs its own authentication. It implements
// the same capability as the network-based mint paths so it can be swapped
// for a fake in tests.
type CLITokenSource interface {
	Mint(ctx context.Context, resource, tenant string) (string, error)
}

// AzureCLI mints tokens via `az account get-access-token`.
type AzureCLI struct {
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewAzureCLI() *AzureCLI {
	return &AzureCLI{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Mint requests a token for the resource, optionally scoped to a tenant. A
// non-zero exit from the CLI is a hard failure.
func (a *AzureCLI) Mint(ctx context.Context, resource, tenant string) (string, error) {
	if !isAllowedCLIResource(resource) {
		return "", fmt.Errorf("unsupported Azure CLI resource scope: %s", resource)
	}

	args := []string{"account", "get-access-token", "--resource", resource, "--output", "json"}
	if tenant != "" && tenant != TenantDefault {
		args = append(args, "--tenant", tenant)
	}

	stdout, err := a.run(ctx, "az", args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", errors.New("Azure CLI token acquisition failed. Run 'az login' and retry")
		}
		return "", fmt.Errorf("Azure CLI not available: %w", err)
	}

	return parseCLIAccessToken(stdout)
}

// isAllowedCLIResource restricts token acquisition to the two scopes this
// app uses. The tenant argument is separately sanitized before it can reach
// the command line.
func isAllowedCLIResource(resource string) bool {
	return resource == AudienceManagement.Resource() || resource == AudienceVault.Resource()
}

func parseCLIAccessToken(stdout []byte) (string, error) {
	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return "", fmt.Errorf("failed to parse Azure CLI token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("Azure CLI token response did not contain accessToken")
	}
	return payload.AccessToken, nil
}
