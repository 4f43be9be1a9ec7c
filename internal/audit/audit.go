// Package audit provides an append-only JSON-lines log of rule
// applications. The core engine never writes files itself; this is
// host-side instrumentation the demo CLI opts into when recording what it
// did to each file.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry represents a single rule application recorded to the audit log.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Operation string    `json:"op"`       // apply, check, check-action
	RuleID    string    `json:"rule_id,omitempty"`
	FilePath  string    `json:"file_path"`
	Status    string    `json:"status"` // success, warning, skipped, error
	Changes   []string  `json:"changes,omitempty"`
	Message   string    `json:"message,omitempty"` // warning/error text, if any
}

// Logger handles writing to the audit log.
type Logger struct {
	path    string
	enabled bool
	mu      sync.Mutex
}

// New creates a new audit logger at the given log file path.
// If enabled is false, the logger will be a no-op.
func New(logPath string, enabled bool) *Logger {
	if !enabled {
		return &Logger{enabled: false}
	}
	return &Logger{path: logPath, enabled: true}
}

// Log writes an entry to the audit log.
func (l *Logger) Log(entry Entry) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(string(data) + "\n"); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	return nil
}

// LogApply logs one rule application's classified outcome.
func (l *Logger) LogApply(ruleID, filePath, status string, changes []string, message string) error {
	return l.Log(Entry{
		Operation: "apply",
		RuleID:    ruleID,
		FilePath:  filePath,
		Status:    status,
		Changes:   changes,
		Message:   message,
	})
}

// Read reads all entries from the audit log.
func (l *Logger) Read() ([]Entry, error) {
	if !l.enabled {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var entries []Entry
	for _, line := range splitLines(string(data)) {
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue // Skip malformed entries
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ReadSince reads entries from the audit log since the given time.
func (l *Logger) ReadSince(since time.Time) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}

	var filtered []Entry
	for _, entry := range all {
		if entry.Timestamp.After(since) || entry.Timestamp.Equal(since) {
			filtered = append(filtered, entry)
		}
	}

	return filtered, nil
}

// ReadForFile reads entries recorded for a specific file path.
func (l *Logger) ReadForFile(filePath string) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}

	var filtered []Entry
	for _, entry := range all {
		if entry.FilePath == filePath {
			filtered = append(filtered, entry)
		}
	}

	return filtered, nil
}

// Enabled returns true if the audit logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
