package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Project is one COLT project known to coltlink.
type Project struct {
	// Name is a display name, derived from the main document by default.
	Name string `yaml:"name"`
	// ProjectFile is the COLT project file passed to COLT on launch.
	ProjectFile string `yaml:"project_file"`
	// MainDocument is the HTML page COLT serves.
	MainDocument string `yaml:"main_document"`
	// Root is the directory whose files belong to the project.
	Root string `yaml:"root"`
}

// Contains reports whether path lies under the project root.
func (p Project) Contains(path string) bool {
	if p.Root == "" {
		return false
	}
	rel, err := filepath.Rel(p.Root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

type workingSetFile struct {
	Projects []Project `yaml:"projects"`
}

// WorkingSet is the persisted list of COLT projects. It is safe for
// concurrent use.
type WorkingSet struct {
	mu       sync.RWMutex
	path     string
	projects []Project
}

// LoadWorkingSet reads the working set at path. A missing file yields an
// empty set that will be created on Save.
func LoadWorkingSet(path string) (*WorkingSet, error) {
	ws := &WorkingSet{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ws, nil
	}
	if err != nil {
		return nil, NewPathError("read working set", path, err)
	}

	var f workingSetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, NewPathError("parse working set", path, err)
	}
	ws.projects = f.Projects
	return ws, nil
}

// Path returns the file the set is persisted to.
func (ws *WorkingSet) Path() string {
	return ws.path
}

// Save writes the working set back to its file.
func (ws *WorkingSet) Save() error {
	ws.mu.RLock()
	f := workingSetFile{Projects: append([]Project(nil), ws.projects...)}
	ws.mu.RUnlock()

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encode working set: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(ws.path), 0o755); err != nil {
		return NewPathError("create working set dir", filepath.Dir(ws.path), err)
	}
	if err := os.WriteFile(ws.path, data, 0o644); err != nil {
		return NewPathError("write working set", ws.path, err)
	}
	return nil
}

// Add inserts p, replacing a project with the same main document.
func (ws *WorkingSet) Add(p Project) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for i, existing := range ws.projects {
		if existing.MainDocument == p.MainDocument {
			ws.projects[i] = p
			return
		}
	}
	ws.projects = append(ws.projects, p)
}

// Remove drops the project with the given main document.
func (ws *WorkingSet) Remove(mainDocument string) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for i, p := range ws.projects {
		if p.MainDocument == mainDocument {
			ws.projects = append(ws.projects[:i], ws.projects[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProjectNotFound, mainDocument)
}

// Find returns the project containing path. Nested roots resolve to the
// innermost project.
func (ws *WorkingSet) Find(path string) (Project, bool) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	var best Project
	found := false
	for _, p := range ws.projects {
		if !p.Contains(path) {
			continue
		}
		if !found || len(p.Root) > len(best.Root) {
			best = p
			found = true
		}
	}
	return best, found
}

// Projects returns the projects sorted by root.
func (ws *WorkingSet) Projects() []Project {
	ws.mu.RLock()
	out := append([]Project(nil), ws.projects...)
	ws.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Root < out[j].Root })
	return out
}

// Roots returns the distinct project roots.
func (ws *WorkingSet) Roots() []string {
	seen := make(map[string]bool)
	var roots []string
	for _, p := range ws.Projects() {
		if p.Root != "" && !seen[p.Root] {
			seen[p.Root] = true
			roots = append(roots, p.Root)
		}
	}
	return roots
}
