package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordAndEntries(t *testing.T) {
	l, err := New(t.TempDir())
	require.NoError(t, err)

	l.Record("myvault", "list_secrets", "secret", "", "success", "")
	l.Record("myvault", "get_secret_metadata", "secret", "db-password", "success", "latest version")

	entries := l.Entries(0)
	require.Len(t, entries, 2)
	require.Equal(t, "list_secrets", entries[0].Action)
	require.Equal(t, "get_secret_metadata", entries[1].Action)
	require.NotEmpty(t, entries[0].ID)
	require.NotEqual(t, entries[0].ID, entries[1].ID)
	require.Nil(t, entries[0].Details)
	require.NotNil(t, entries[1].Details)
	require.Equal(t, "latest version", *entries[1].Details)
}

func TestEntriesLimit(t *testing.T) {
	l, err := New(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 150; i++ {
		l.Record("v", "action", "secret", fmt.Sprintf("item-%d", i), "success", "")
	}

	// Default limit is 100, newest entries win, oldest first within the
	// window.
	entries := l.Entries(0)
	require.Len(t, entries, 100)
	require.Equal(t, "item-50", entries[0].ItemName)
	require.Equal(t, "item-149", entries[99].ItemName)

	require.Len(t, l.Entries(10), 10)
	require.Len(t, l.Entries(1000), 150)
}

func TestBoundedAtMaxEntries(t *testing.T) {
	l, err := New(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < maxEntries+25; i++ {
		l.Record("v", "action", "secret", fmt.Sprintf("item-%d", i), "success", "")
	}

	entries := l.Entries(maxEntries + 100)
	require.Len(t, entries, maxEntries)
	require.Equal(t, "item-25", entries[0].ItemName, "oldest entries evicted")
}

func TestSensitiveDetailsRedacted(t *testing.T) {
	l, err := New(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		details string
		want    string
	}{
		{"the secret was rotated", "[REDACTED]"},
		{"Token refresh failed", "[REDACTED]"},
		{"wrong PASSWORD supplied", "[REDACTED]"},
		{"access_key rotated", "[REDACTED]"},
		{"plain detail", "plain detail"},
	}
	for _, tt := range tests {
		l.Clear()
		l.Record("v", "action", "secret", "item", "success", tt.details)
		entries := l.Entries(1)
		require.Len(t, entries, 1)
		require.Equal(t, tt.want, *entries[0].Details)
	}
}

func TestLongFieldsTruncated(t *testing.T) {
	l, err := New(t.TempDir())
	require.NoError(t, err)

	long := strings.Repeat("x", 2000)
	l.Record("v", "action", "secret", long, "success", long)

	entries := l.Entries(1)
	require.Len(t, entries[0].ItemName, maxFieldLength)
	require.Len(t, *entries[0].Details, maxFieldLength)
}

func TestExportRedactsValueBearingActions(t *testing.T) {
	l, err := New(t.TempDir())
	require.NoError(t, err)

	l.Record("v", "get_secret_value", "secret", "db-password", "success", "read for deploy")
	l.Record("v", "list_secrets", "secret", "", "success", "42 items")

	blob, err := l.Export()
	require.NoError(t, err)

	var exported []Entry
	require.NoError(t, json.Unmarshal([]byte(blob), &exported))
	require.Len(t, exported, 2)
	require.Equal(t, "[REDACTED]", *exported[0].Details)
	require.Equal(t, "42 items", *exported[1].Details)
}

func TestPersistenceAcrossReload(t *testing.T) {
	dir := t.TempDir()

	l, err := New(dir)
	require.NoError(t, err)
	l.Record("v", "set_secret", "secret", "api-key", "success", "")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir, "audit.json"))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	reloaded, err := New(dir)
	require.NoError(t, err)
	entries := reloaded.Entries(0)
	require.Len(t, entries, 1)
	require.Equal(t, "set_secret", entries[0].Action)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)

	l.Record("v", "action", "secret", "item", "success", "")
	l.Clear()
	require.Empty(t, l.Entries(0))

	reloaded, err := New(dir)
	require.NoError(t, err)
	require.Empty(t, reloaded.Entries(0))
}

func TestCorruptLogFileIsDropped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audit.json"), []byte("not json"), 0o600))

	l, err := New(dir)
	require.NoError(t, err)
	require.Empty(t, l.Entries(0))
}
