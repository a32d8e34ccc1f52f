// Package journal keeps an append-only record of hook runs under the
// state directory. One JSON object per line; readers tolerate trailing
// partial writes.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/openclaw/agenthook/internal/registry"
)

// Record describes one completed (or attempted) agent run.
type Record struct {
	Agent    string        `json:"agent"`
	Event    string        `json:"event,omitempty"`
	Mode     string        `json:"mode"`
	Status   string        `json:"status"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// Journal appends run records to a single file. Safe for concurrent use
// within one process; cross-process appends rely on O_APPEND.
type Journal struct {
	mu   sync.Mutex
	path string
}

const fileName = "runs.jsonl"

// Open returns a journal rooted at dir. The file is created lazily on
// first append.
func Open(dir string) *Journal {
	return &Journal{path: filepath.Join(dir, fileName)}
}

// Append writes one record. Failures here must not abort a run, so the
// caller typically logs and continues.
func (j *Journal) Append(rec Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode run record: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, registry.FilePerm)
	if err != nil {
		return fmt.Errorf("open run journal: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append run record: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest last. A missing journal is an
// empty history, not an error. Unparseable lines are skipped.
func (j *Journal) Recent(n int) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open run journal: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read run journal: %w", err)
	}

	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}
