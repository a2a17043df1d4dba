// Package audit keeps a local, bounded activity history for user-visible
// operations. Sensitive material in details is redacted before it can land
// on disk, and the log never grows past a fixed entry count.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	maxEntries     = 1000
	maxFieldLength = 512
	defaultLimit   = 100
)

// Entry is a single audit record.
type Entry struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
	VaultName string  `json:"vaultName"`
	Action    string  `json:"action"`
	ItemType  string  `json:"itemType"`
	ItemName  string  `json:"itemName"`
	Result    string  `json:"result"`
	Details   *string `json:"details,omitempty"`
}

// Logger is a mutex-guarded in-memory log flushed to a 0600 JSON file on
// every write.
type Logger struct {
	mu      sync.RWMutex
	entries []Entry
	path    string
}

// New loads any existing entries from dir/audit.json and returns a ready
// logger.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create audit dir: %w", err)
	}
	l := &Logger{path: filepath.Join(dir, "audit.json")}

	content, err := os.ReadFile(l.path)
	if err == nil {
		// A corrupt log is dropped rather than blocking startup.
		_ = json.Unmarshal(content, &l.entries)
	}
	return l, nil
}

// Record appends an entry, truncating fields and redacting sensitive
// details, then flushes to disk. An empty details string records no
// details.
func (l *Logger) Record(vaultName, action, itemType, itemName, result, details string) {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		VaultName: truncateField(vaultName),
		Action:    truncateField(action),
		ItemType:  truncateField(itemType),
		ItemName:  truncateField(itemName),
		Result:    truncateField(result),
	}
	if details != "" {
		sanitized := sanitizeDetails(details)
		entry.Details = &sanitized
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > maxEntries {
		l.entries = l.entries[len(l.entries)-maxEntries:]
	}
	l.flushLocked()
}

// Entries returns the most recent entries, oldest first. A non-positive
// limit defaults to 100.
func (l *Logger) Entries(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]Entry, limit)
	copy(out, l.entries[len(l.entries)-limit:])
	return out
}

// Export returns the full log as JSON with value-bearing actions redacted,
// suitable for clipboard or file export.
func (l *Logger) Export() (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sanitized := make([]Entry, len(l.entries))
	for i, entry := range l.entries {
		if entry.Details != nil {
			var details string
			if strings.Contains(entry.Action, "get_value") ||
				strings.Contains(entry.Action, "set_secret") ||
				strings.Contains(entry.Action, "token") {
				details = "[REDACTED]"
			} else {
				details = sanitizeDetails(*entry.Details)
			}
			entry.Details = &details
		}
		sanitized[i] = entry
	}

	blob, err := json.MarshalIndent(sanitized, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to export audit log: %w", err)
	}
	return string(blob), nil
}

// Clear removes all entries from memory and disk.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.flushLocked()
}

func (l *Logger) flushLocked() {
	entries := l.entries
	if entries == nil {
		entries = []Entry{}
	}
	blob, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(l.path, blob, 0o600)
}

// sanitizeDetails redacts anything that smells like credential material.
// False positives are preferred over leaking secrets.
func sanitizeDetails(details string) string {
	lower := strings.ToLower(details)
	for _, keyword := range []string{"secret", "token", "password", "access_key"} {
		if strings.Contains(lower, keyword) {
			return "[REDACTED]"
		}
	}
	return truncateField(details)
}

func truncateField(value string) string {
	runes := []rune(value)
	if len(runes) <= maxFieldLength {
		return value
	}
	return string(runes[:maxFieldLength])
}
