package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/openclaw/agenthook/internal/registry"
)

// TempResource is a uniquely named, pre-permissioned file under the
// process-scoped temp root. Remove is safe to call more than once.
type TempResource struct {
	path string

	mu      sync.Mutex
	removed bool
}

// CreateTempResource creates a new empty temp file named
// <prefix>-<uuid><suffix> with owner-only permissions.
func CreateTempResource(prefix, suffix string) (*TempResource, error) {
	root, err := TempRoot()
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s-%s%s", prefix, uuid.NewString(), suffix)
	path := filepath.Join(root, name)
	if err := WriteFile(path, nil, registry.FilePerm); err != nil {
		return nil, fmt.Errorf("create temp resource: %w", err)
	}
	return &TempResource{path: path}, nil
}

// Path returns the location of the resource on disk.
func (r *TempResource) Path() string {
	return r.path
}

// Write replaces the resource content, keeping the permission policy.
func (r *TempResource) Write(content []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.removed {
		return fmt.Errorf("temp resource %s already removed", r.path)
	}
	return WriteFile(r.path, content, registry.FilePerm)
}

// Read returns the current resource content.
func (r *TempResource) Read() ([]byte, error) {
	return ReadFile(r.path, registry.MaxAgentFileSize)
}

// Remove deletes the resource. Idempotent: a second call is a no-op.
func (r *TempResource) Remove() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.removed {
		return nil
	}
	r.removed = true
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temp resource: %w", err)
	}
	return nil
}
