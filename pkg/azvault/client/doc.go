// Package client implements the HTTP client for azvault to communicate with
// the Azure management plane and Key Vault data plane, with an outbound host
// allowlist, transient-failure retries honoring Retry-After, and nextLink
// pagination.
package client
