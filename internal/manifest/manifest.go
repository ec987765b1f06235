package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"binfetch/internal/layout"
	"binfetch/internal/logger"
)

// Manifest accumulates the relative paths of successfully installed
// executables, keyed by "{platform}_{arch}_{tool}". It is created empty at
// run start, mutated only on successful installs, and serialized exactly
// once at run end. The top-level orchestration owns it; fetch and extract
// code never touches it directly.
type Manifest struct {
	paths map[string][]string
	order []string // Key insertion order, so serialization is stable
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{paths: make(map[string][]string)}
}

// Record appends relPath to the list for the (platform, arch, tool) key.
// Recording the same path twice for a key is a no-op, so re-running a tool
// against an existing manifest never produces duplicates.
func (m *Manifest) Record(key layout.Key, relPath string) {
	k := key.String()
	if _, ok := m.paths[k]; !ok {
		m.order = append(m.order, k)
	}
	for _, existing := range m.paths[k] {
		if existing == relPath {
			return
		}
	}
	m.paths[k] = append(m.paths[k], relPath)
	logger.Debug("[DEBUG] Recorded %s -> %s\n", k, relPath)
}

// Paths returns the recorded paths for a key, nil if none were recorded.
func (m *Manifest) Paths(key layout.Key) []string {
	return m.paths[key.String()]
}

// Len returns the number of keys with at least one recorded path.
func (m *Manifest) Len() int {
	return len(m.paths)
}

// Save writes the manifest as indented JSON to path. Keys serialize in
// insertion order. A write failure here is the run's final failure; the
// installed binaries stay on disk regardless.
func (m *Manifest) Save(path string) error {
	buf, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// MarshalJSON renders the mapping as an indented JSON object, one key per
// recorded (platform, arch, tool) cell, preserving insertion order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	if len(m.order) == 0 {
		return []byte("{}"), nil
	}

	// encoding/json sorts map keys, which would reorder the manifest, so
	// the object is assembled key by key instead.
	out := []byte("{\n")
	for i, k := range m.order {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		list, err := json.MarshalIndent(m.paths[k], "  ", "  ")
		if err != nil {
			return nil, err
		}
		out = append(out, "  "...)
		out = append(out, name...)
		out = append(out, ": "...)
		out = append(out, list...)
		if i < len(m.order)-1 {
			out = append(out, ',')
		}
		out = append(out, '\n')
	}
	out = append(out, '}')
	return out, nil
}
