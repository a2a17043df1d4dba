package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCertificateList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/certificates", r.URL.Path)
		_, _ = w.Write([]byte(`{"value":[
			{"id":"https://v.vault.azure.net/certificates/tls-cert","x5t":"AbC123","attributes":{"enabled":true},"policy":{"x509_props":{"subject":"CN=example.com"}}},
			{"id":"https://v.vault.azure.net/certificates/bare-cert","attributes":{}}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(t)
	certs, err := c.Certificates().List(context.Background(), "token", server.URL)
	require.NoError(t, err)
	require.Len(t, certs, 2)

	require.Equal(t, "tls-cert", certs[0].Name)
	require.Equal(t, "CN=example.com", *certs[0].Subject)
	require.Equal(t, "AbC123", *certs[0].Thumbprint)

	require.Equal(t, "bare-cert", certs[1].Name)
	require.True(t, certs[1].Enabled, "missing enabled attribute defaults to true")
	require.Nil(t, certs[1].Subject)
}
