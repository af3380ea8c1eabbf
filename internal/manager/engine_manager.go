// Package manager hosts multiple action graphs. Each graph is a directory
// holding a badger triple store plus its own verb/role registries and
// capability resolver; the manager keeps a bounded LRU of open engines and
// closes them on eviction.
package manager

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/actionsemantics/sage/pkg/capability"
	"github.com/actionsemantics/sage/pkg/registry"
	"github.com/actionsemantics/sage/pkg/store"
)

// GraphMetadata describes one hosted graph, read from graph.yaml when
// present.
type GraphMetadata struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

const (
	// MaxOpenEngines bounds the number of graphs held open at once.
	MaxOpenEngines = 10
	// GraphListTTL is how long the directory listing is cached.
	GraphListTTL = 1 * time.Minute
)

// Engine bundles the per-graph collaborators: the triple store and the
// registries/resolver built over it.
type Engine struct {
	Store    *store.TripleStore
	Verbs    *registry.VerbRegistry
	Roles    *registry.RoleRegistry
	Resolver *capability.Resolver
}

// Close releases the engine's store.
func (e *Engine) Close() error {
	return e.Store.Close()
}

// EngineManager opens and caches engines by graph ID.
type EngineManager struct {
	baseDir  string
	readOnly bool

	engines *lru.Cache[string, *Engine]

	mu            sync.RWMutex
	cachedList    []GraphMetadata
	lastListBuild time.Time
}

// NewEngineManager creates a manager rooted at baseDir. Evicted engines
// are closed.
func NewEngineManager(baseDir string, readOnly bool) *EngineManager {
	cache, _ := lru.NewWithEvict[string, *Engine](MaxOpenEngines, func(key string, e *Engine) {
		if err := e.Close(); err != nil {
			slog.Warn("failed to close evicted engine", "graph", key, "error", err)
		}
	})
	return &EngineManager{
		baseDir:  baseDir,
		readOnly: readOnly,
		engines:  cache,
	}
}

// GetEngine retrieves the engine for a graph, opening it if necessary.
func (m *EngineManager) GetEngine(graphID string) (*Engine, error) {
	if e, ok := m.engines.Get(graphID); ok {
		return e, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check under lock
	if e, ok := m.engines.Get(graphID); ok {
		return e, nil
	}

	graphDir := filepath.Join(m.baseDir, graphID)
	if _, err := os.Stat(graphDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("graph not found: %s", graphID)
	}

	cfg := store.DefaultConfig(graphDir)
	cfg.ReadOnly = m.readOnly
	cfg.BypassLockGuard = true
	cfg.Profile = "Low-Mem"
	cfg.BlockCacheSize = 128 << 20
	cfg.IndexCacheSize = 64 << 20

	ts, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store for graph %s: %w", graphID, err)
	}

	e := &Engine{
		Store: ts,
		Verbs: registry.NewVerbRegistry(ts),
		Roles: registry.NewRoleRegistry(ts),
	}
	e.Resolver = capability.NewResolver(e.Verbs, e.Roles)

	m.engines.Add(graphID, e)
	return e, nil
}

// ListGraphs returns the hosted graphs, with metadata from graph.yaml when
// available. The listing is cached for GraphListTTL.
func (m *EngineManager) ListGraphs() ([]GraphMetadata, error) {
	m.mu.RLock()
	if time.Since(m.lastListBuild) < GraphListTTL && m.cachedList != nil {
		list := make([]GraphMetadata, len(m.cachedList))
		copy(list, m.cachedList)
		m.mu.RUnlock()
		return list, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check
	if time.Since(m.lastListBuild) < GraphListTTL && m.cachedList != nil {
		list := make([]GraphMetadata, len(m.cachedList))
		copy(list, m.cachedList)
		return list, nil
	}

	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		return nil, err
	}

	var graphs []GraphMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		meta := GraphMetadata{ID: id, Name: id}

		metaPath := filepath.Join(m.baseDir, id, "graph.yaml")
		if data, err := os.ReadFile(metaPath); err == nil {
			var fileMeta GraphMetadata
			if err := yaml.Unmarshal(data, &fileMeta); err == nil {
				if fileMeta.Name != "" {
					meta.Name = fileMeta.Name
				}
				meta.Description = fileMeta.Description
			}
		}
		graphs = append(graphs, meta)
	}

	m.cachedList = graphs
	m.lastListBuild = time.Now()

	return graphs, nil
}

// CloseAll closes every open engine.
func (m *EngineManager) CloseAll() {
	m.engines.Purge()
}
