package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/storage"
)

// Violation is a single security-relevant finding.
type Violation struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail"`
	Path      string    `json:"path"`
	Host      string    `json:"host,omitempty"`
}

// ViolationLog is the append-only record of security findings, kept apart
// from the operational log.
type ViolationLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenViolationLog opens (creating if needed) the violation log at path.
func OpenViolationLog(path string) (*ViolationLog, error) {
	if err := storage.EnsureDir(filepath.Dir(path), registry.DirPerm); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, registry.FilePerm)
	if err != nil {
		return nil, fmt.Errorf("open violation log: %w", err)
	}
	return &ViolationLog{file: f}, nil
}

// Record appends one violation line: timestamp|kind|detail|path.
func (v *ViolationLog) Record(kind, detail, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	line := fmt.Sprintf("%s|%s|%s|%s\n",
		time.Now().UTC().Format(time.RFC3339), kind, detail, path)
	if _, err := v.file.WriteString(line); err != nil {
		return fmt.Errorf("append violation: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (v *ViolationLog) Close() error {
	if v == nil || v.file == nil {
		return nil
	}
	return v.file.Close()
}
