// Package auth manages Azure authentication for azvault: device-code login,
// refresh-token rotation, per-audience token caching with an expiry safety
// margin, tenant switching, keyring/file session persistence, and an Azure
// CLI fallback token source.
package auth
