package output

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azvault/azvault/pkg/azvault/client"
)

func TestWriteCSVHeaderFollowsFieldOrder(t *testing.T) {
	subs := []client.Subscription{
		{SubscriptionID: "s1", DisplayName: "Prod", State: "Enabled", TenantID: "t1"},
		{SubscriptionID: "s2", DisplayName: "Dev, staging", State: "Enabled", TenantID: "t2"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, subs))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"subscriptionId", "displayName", "state", "tenantId"}, records[0])
	require.Equal(t, []string{"s1", "Prod", "Enabled", "t1"}, records[1])
	// Commas inside values survive the round trip.
	require.Equal(t, "Dev, staging", records[2][1])
}

func TestWriteCSVNilPointersAsEmptyCells(t *testing.T) {
	contentType := "text/plain"
	secrets := []client.SecretItem{
		{ID: "id1", Name: "a", Enabled: true, ContentType: &contentType},
		{ID: "id2", Name: "b", Enabled: false},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, secrets))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	// The header comes from the first item, so the second item's missing
	// omitempty fields render as empty cells.
	header := records[0]
	require.Equal(t, "id", header[0])
	idx := -1
	for i, column := range header {
		if column == "contentType" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	require.Equal(t, "text/plain", records[1][idx])
	require.Equal(t, "", records[2][idx])
}

func TestWriteCSVEmptySlice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []client.Subscription{}))
	require.Empty(t, buf.String())
}

func TestWriteCSVRejectsNonSlice(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, WriteCSV(&buf, client.Subscription{}))
}

func TestWriteCSVBoundsItemCount(t *testing.T) {
	items := make([]client.Subscription, maxCSVItems+1)
	var buf bytes.Buffer
	require.ErrorContains(t, WriteCSV(&buf, items), "refusing to export")
}

func TestJSONFieldOrderSkipsNestedObjects(t *testing.T) {
	type inner struct {
		Deep string `json:"deep"`
	}
	type outer struct {
		First  string            `json:"first"`
		Nested inner             `json:"nested"`
		Tags   map[string]string `json:"tags"`
		Last   string            `json:"last"`
	}

	keys, err := jsonFieldOrder(outer{Tags: map[string]string{"k": "v"}})
	require.NoError(t, err)
	require.Equal(t, []string{"first", "nested", "tags", "last"}, keys)
}
