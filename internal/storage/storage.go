// Package storage provides filesystem primitives with an enforced
// permission policy: private directories, owner-only files, bounded reads
// and path-traversal guarding. Every component that touches durable state
// goes through this package.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/openclaw/agenthook/internal/registry"
)

// Sentinel errors for callers that branch on failure class.
var (
	ErrNotFound      = errors.New("not found")
	ErrTooLarge      = errors.New("file exceeds size limit")
	ErrNotReadable   = errors.New("file not readable")
	ErrBinaryContent = errors.New("binary content rejected")
	ErrUnsafePath    = errors.New("unsafe path")
)

// Tier identifies where a resource was resolved from. Workspace-tier
// resources always shadow user-tier ones of the same name.
type Tier string

const (
	TierWorkspace Tier = "workspace"
	TierUser      Tier = "user"
)

// EnsureDir creates path (and parents) if absent and enforces perm on it.
// An existing directory with looser permissions is tightened, not accepted.
func EnsureDir(path string, perm fs.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	// MkdirAll is a no-op on existing dirs and umask can widen fresh ones.
	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("set permissions on %s: %w", path, err)
	}
	return nil
}

// ReadFile reads path, enforcing a size ceiling and rejecting binary
// content. Returns ErrNotFound, ErrTooLarge, ErrNotReadable or
// ErrBinaryContent as appropriate.
func ReadFile(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", path, ErrNotReadable)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, ErrNotReadable)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%s is %d bytes (limit %d): %w", path, info.Size(), maxSize, ErrTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotReadable)
	}
	if isBinary(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrBinaryContent)
	}
	return data, nil
}

// WriteFile writes content to path and enforces perm afterwards. A chmod
// failure is a real failure, not something to ignore.
func WriteFile(path string, content []byte, perm fs.FileMode) error {
	if err := os.WriteFile(path, content, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("set permissions on %s: %w", path, err)
	}
	return nil
}

// isBinary applies the same heuristic git uses: a NUL byte in the first
// 8000 bytes marks the content as binary.
func isBinary(data []byte) bool {
	probe := data
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

// ResolveByTier looks for name first in workspaceDir, then in userDir, and
// returns the first match with its tier. Returns ErrNotFound if neither
// tier has it.
func ResolveByTier(name, workspaceDir, userDir string) (string, Tier, error) {
	candidates := []struct {
		dir  string
		tier Tier
	}{
		{workspaceDir, TierWorkspace},
		{userDir, TierUser},
	}
	for _, c := range candidates {
		if c.dir == "" {
			continue
		}
		path := filepath.Join(c.dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, c.tier, nil
		}
	}
	return "", "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

// ValidatePathSafety rejects traversal sequences and absolute paths that
// fall outside the allowed roots. An empty allow-list rejects every
// absolute path.
func ValidatePathSafety(path string, allowedRoots ...string) error {
	if path == "" {
		return fmt.Errorf("empty path: %w", ErrUnsafePath)
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("%s contains traversal sequence: %w", path, ErrUnsafePath)
		}
	}
	if !filepath.IsAbs(path) {
		return nil
	}
	clean := filepath.Clean(path)
	for _, root := range allowedRoots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		if clean == root || strings.HasPrefix(clean, root+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("%s outside allowed roots: %w", path, ErrUnsafePath)
}

// TempRoot returns the process-scoped temp directory, creating it on first
// use. Keying by pid keeps concurrent invocations on the same host apart.
func TempRoot() (string, error) {
	root := filepath.Join(os.TempDir(), fmt.Sprintf("agenthook-%d", os.Getpid()))
	if err := EnsureDir(root, registry.DirPerm); err != nil {
		return "", err
	}
	return root, nil
}

// CleanTempRoot removes the process-scoped temp directory and everything
// in it. Used by the emergency-cleanup path.
func CleanTempRoot() error {
	root := filepath.Join(os.TempDir(), fmt.Sprintf("agenthook-%d", os.Getpid()))
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("remove temp root: %w", err)
	}
	return nil
}
