package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/keys", r.URL.Path)
		_, _ = w.Write([]byte(`{"value":[
			{"kid":"https://v.vault.azure.net/keys/signing-key","kty":"RSA","key_ops":["sign","verify"],"attributes":{"enabled":true,"exp":1767225600}}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(t)
	keys, err := c.Keys().List(context.Background(), "token", server.URL)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, "signing-key", keys[0].Name)
	require.Equal(t, "RSA", *keys[0].KeyType)
	require.Equal(t, []string{"sign", "verify"}, keys[0].KeyOps)
	require.Equal(t, "2026-01-01T00:00:00Z", *keys[0].Expires)
}
