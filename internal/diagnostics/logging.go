// Package diagnostics provides leveled logging, the security violation log,
// best-effort violation notification, and the recovery/safe-exit paths.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/storage"
)

// Level represents log severity.
type Level string

const (
	LevelDebug    Level = "DEBUG"
	LevelInfo     Level = "INFO"
	LevelWarn     Level = "WARN"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRIT"
)

var levelPriority = map[Level]int{
	LevelDebug:    0,
	LevelInfo:     1,
	LevelWarn:     2,
	LevelError:    3,
	LevelCritical: 4,
}

// Logger writes timestamped key=value lines to an append-only log file and
// mirrors warn and above to stderr. Safe for concurrent use.
type Logger struct {
	mu        sync.Mutex
	file      io.Writer
	stderr    io.Writer
	minLevel  Level
	component string
}

// New creates a Logger appending to logPath. An empty logPath logs to
// stderr only.
func New(logPath string) (*Logger, error) {
	l := &Logger{
		stderr:   os.Stderr,
		minLevel: LevelInfo,
	}
	if logPath != "" {
		if err := storage.EnsureDir(filepath.Dir(logPath), registry.DirPerm); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, registry.FilePerm)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
	}
	return l, nil
}

// WithComponent returns a logger tagging every line with the component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		file:      l.file,
		stderr:    l.stderr,
		minLevel:  l.minLevel,
		component: component,
	}
}

// SetLevel sets the minimum level written.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetStderr redirects the stderr mirror (used by tests).
func (l *Logger) SetStderr(w io.Writer) {
	l.stderr = w
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

func (l *Logger) Critical(msg string, fields ...map[string]interface{}) {
	l.log(LevelCritical, msg, fields...)
}

// formatFields renders fields as sorted key=value pairs for stable output.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Write([]byte(line))
	}
	if levelPriority[level] >= levelPriority[LevelWarn] && l.stderr != nil {
		l.stderr.Write([]byte(line))
	}
}
