package manager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupManager(t *testing.T, graphs ...string) (*EngineManager, string) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "sage_manager_test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	for _, g := range graphs {
		if err := os.MkdirAll(filepath.Join(tmpDir, g), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	m := NewEngineManager(tmpDir, false)
	t.Cleanup(m.CloseAll)
	return m, tmpDir
}

func TestGetEngineNotFound(t *testing.T) {
	m, _ := setupManager(t)

	_, err := m.GetEngine("missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestGetEngineReuse(t *testing.T) {
	m, _ := setupManager(t, "orders")

	e1, err := m.GetEngine("orders")
	if err != nil {
		t.Fatal(err)
	}
	e2, err := m.GetEngine("orders")
	if err != nil {
		t.Fatal(err)
	}
	if e1 != e2 {
		t.Error("expected the cached engine on the second lookup")
	}

	// The engine carries a working resolver over the seed catalogs.
	d, err := e1.Resolver.Check("admin", "reading")
	if err != nil {
		t.Fatal(err)
	}
	if !d.Allowed {
		t.Errorf("seed resolver denied admin: %s", d.Reason)
	}
}

func TestListGraphs(t *testing.T) {
	m, tmpDir := setupManager(t, "orders", "inventory")

	// Metadata comes from graph.yaml when present.
	meta := "name: Order Flow\ndescription: Procurement action graph\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "orders", "graph.yaml"), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}
	// Stray files are not graphs.
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	graphs, err := m.ListGraphs()
	if err != nil {
		t.Fatal(err)
	}
	if len(graphs) != 2 {
		t.Fatalf("expected 2 graphs, got %+v", graphs)
	}

	byID := make(map[string]GraphMetadata)
	for _, g := range graphs {
		byID[g.ID] = g
	}
	if byID["orders"].Name != "Order Flow" || byID["orders"].Description != "Procurement action graph" {
		t.Errorf("graph.yaml metadata not applied: %+v", byID["orders"])
	}
	if byID["inventory"].Name != "inventory" {
		t.Errorf("expected the directory name as fallback, got %+v", byID["inventory"])
	}
}
