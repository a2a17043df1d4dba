// Package cmd builds the azvault command tree: authentication, tenant and
// subscription selection, vault discovery, secret/key/certificate
// operations, and the local audit log.
package cmd
