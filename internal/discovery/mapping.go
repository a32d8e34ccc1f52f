package discovery

import (
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/storage"
)

// DefaultPriority is assigned to agents absent from the priority table.
const DefaultPriority = 100

// maxMappingSize bounds the mapping resource read.
const maxMappingSize = 64 * 1024

// Mapping is the declarative event subscription resource.
type Mapping struct {
	Events     map[string][]string `yaml:"events"`
	Priorities map[string]int      `yaml:"priorities"`
}

// Subscription is one agent subscribed to an event, with its priority.
type Subscription struct {
	Name     string
	Priority int
}

// LoadMapping reads the mapping resource. A missing or malformed resource
// degrades to an empty mapping ("no agents configured"), never a failure.
func (f *Finder) LoadMapping(customPath, workspaceRoot string) *Mapping {
	path := customPath
	if path == "" {
		wsPath := registry.WorkspaceMappingPath(workspaceRoot)
		userPath, _ := registry.UserMappingPath()
		resolved, _, err := storage.ResolveByTier(registry.MappingResource,
			workspaceDirOf(wsPath), workspaceDirOf(userPath))
		if err != nil {
			f.Log.Debug("no event mapping resource found")
			return &Mapping{}
		}
		path = resolved
	}

	data, err := storage.ReadFile(path, maxMappingSize)
	if err != nil {
		f.Log.Warn("event mapping unreadable, treating as empty", map[string]interface{}{
			"path": path, "error": err.Error(),
		})
		return &Mapping{}
	}

	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		f.Log.Warn("event mapping malformed, treating as empty", map[string]interface{}{
			"path": path, "error": err.Error(),
		})
		return &Mapping{}
	}
	return &m
}

// workspaceDirOf strips the resource filename so ResolveByTier can rejoin it.
func workspaceDirOf(fullPath string) string {
	if fullPath == "" {
		return ""
	}
	return filepath.Dir(fullPath)
}

// GetPriority returns the agent's priority from the mapping, or
// DefaultPriority if absent.
func (m *Mapping) GetPriority(agentName string) int {
	if p, ok := m.Priorities[agentName]; ok {
		return p
	}
	return DefaultPriority
}

// GetAgentsForEvent returns the agents subscribed to event, in ascending
// priority order. Entries that do not resolve via FindAgent are dropped
// with a warning; an event absent from the mapping yields an empty list.
func (f *Finder) GetAgentsForEvent(m *Mapping, event registry.EventType) []Subscription {
	names := m.Events[string(event)]
	subs := make([]Subscription, 0, len(names))
	for _, name := range names {
		if _, err := f.FindAgent(name); err != nil {
			f.Log.Warn("dropping unresolvable agent from event", map[string]interface{}{
				"agent": name, "event": string(event), "error": err.Error(),
			})
			continue
		}
		subs = append(subs, Subscription{Name: name, Priority: m.GetPriority(name)})
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Priority < subs[j].Priority
	})
	return subs
}
