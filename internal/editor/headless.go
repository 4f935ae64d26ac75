package editor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
)

// ErrViewClosed is returned for operations on a closed view.
var ErrViewClosed = errors.New("view is closed")

// ContentSource loads file content for row computation.
type ContentSource func(path string) ([]byte, error)

// Annotation is a drawn annotation as recorded by Headless.
type Annotation struct {
	ID       string
	Position int
	Icon     Icon
}

type view struct {
	id          ViewID
	path        string
	content     []byte
	annotations map[string]Annotation
	status      map[string]string
}

// Headless is an in-memory Editor. It keeps every piece of state the
// reconciler writes so callers (and tests) can inspect it.
//
// Headless is not safe for concurrent use.
type Headless struct {
	load   ContentSource
	nextID ViewID
	views  map[ViewID]*view
	order  []ViewID

	console        []string
	consoleVisible bool
	saves          map[string]int
}

// HeadlessOption configures a Headless editor.
type HeadlessOption func(*Headless)

// WithContentSource overrides how file content is read.
func WithContentSource(src ContentSource) HeadlessOption {
	return func(h *Headless) {
		h.load = src
	}
}

// NewHeadless creates an empty in-memory editor.
func NewHeadless(opts ...HeadlessOption) *Headless {
	h := &Headless{
		load:  os.ReadFile,
		views: make(map[ViewID]*view),
		saves: make(map[string]int),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open opens a view of path, or returns the existing one.
func (h *Headless) Open(path string) ViewID {
	path = CleanPath(path)
	if id, ok := h.FindOpenView(path); ok {
		return id
	}

	h.nextID++
	v := &view{
		id:          h.nextID,
		path:        path,
		annotations: make(map[string]Annotation),
		status:      make(map[string]string),
	}
	v.content, _ = h.load(path)
	h.views[v.id] = v
	h.order = append(h.order, v.id)
	return v.id
}

// Close closes the view. Its annotations disappear with it.
func (h *Headless) Close(id ViewID) {
	if _, ok := h.views[id]; !ok {
		return
	}
	delete(h.views, id)
	for i, o := range h.order {
		if o == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Reload re-reads the view's content from its source.
func (h *Headless) Reload(id ViewID) error {
	v, ok := h.views[id]
	if !ok {
		return ErrViewClosed
	}
	content, err := h.load(v.path)
	if err != nil {
		return err
	}
	v.content = content
	return nil
}

// Views returns the open views in opening order.
func (h *Headless) Views() []ViewID {
	out := make([]ViewID, len(h.order))
	copy(out, h.order)
	return out
}

// FindOpenView implements Editor.
func (h *Headless) FindOpenView(filePath string) (ViewID, bool) {
	filePath = CleanPath(filePath)
	for _, id := range h.order {
		if h.views[id].path == filePath {
			return id, true
		}
	}
	return NoView, false
}

// IsOpen implements Editor.
func (h *Headless) IsOpen(id ViewID) bool {
	_, ok := h.views[id]
	return ok
}

// FilePath implements Editor.
func (h *Headless) FilePath(id ViewID) string {
	if v, ok := h.views[id]; ok {
		return v.path
	}
	return ""
}

// RowOf implements Editor.
func (h *Headless) RowOf(id ViewID, position int) int {
	v, ok := h.views[id]
	if !ok {
		return -1
	}
	return RowAt(v.content, position)
}

// Content returns the view's buffer.
func (h *Headless) Content(id ViewID) []byte {
	if v, ok := h.views[id]; ok {
		return v.content
	}
	return nil
}

// AddAnnotation implements Editor.
func (h *Headless) AddAnnotation(id ViewID, key string, position int, icon Icon) {
	if v, ok := h.views[id]; ok {
		v.annotations[key] = Annotation{ID: key, Position: position, Icon: icon}
	}
}

// RemoveAnnotation implements Editor.
func (h *Headless) RemoveAnnotation(id ViewID, key string) {
	if v, ok := h.views[id]; ok {
		delete(v.annotations, key)
	}
}

// Annotations returns the view's annotations sorted by position, then ID.
func (h *Headless) Annotations(id ViewID) []Annotation {
	v, ok := h.views[id]
	if !ok {
		return nil
	}
	out := make([]Annotation, 0, len(v.annotations))
	for _, a := range v.annotations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SetStatusText implements Editor.
func (h *Headless) SetStatusText(id ViewID, key, text string) {
	if v, ok := h.views[id]; ok {
		v.status[key] = text
	}
}

// ClearStatusText implements Editor.
func (h *Headless) ClearStatusText(id ViewID, key string) {
	if v, ok := h.views[id]; ok {
		delete(v.status, key)
	}
}

// StatusText returns the status text under key.
func (h *Headless) StatusText(id ViewID, key string) (string, bool) {
	v, ok := h.views[id]
	if !ok {
		return "", false
	}
	text, ok := v.status[key]
	return text, ok
}

// AppendConsole implements Editor. The console is append-only and unbounded.
func (h *Headless) AppendConsole(text string) {
	h.console = append(h.console, text)
}

// RevealConsole implements Editor.
func (h *Headless) RevealConsole() {
	h.consoleVisible = true
}

// Console returns the console lines.
func (h *Headless) Console() []string {
	out := make([]string, len(h.console))
	copy(out, h.console)
	return out
}

// ConsoleVisible reports whether RevealConsole has been called.
func (h *Headless) ConsoleVisible() bool {
	return h.consoleVisible
}

// Save implements Editor. Headless buffers mirror the disk, so saving only
// records the request.
func (h *Headless) Save(id ViewID) error {
	v, ok := h.views[id]
	if !ok {
		return ErrViewClosed
	}
	h.saves[v.path]++
	return nil
}

// Saves returns how often path was saved.
func (h *Headless) Saves(path string) int {
	return h.saves[CleanPath(path)]
}

// RowAt returns the zero-based row of byte offset position in content.
// Offsets past the end clamp to the last row.
func RowAt(content []byte, position int) int {
	if position <= 0 {
		return 0
	}
	if position > len(content) {
		position = len(content)
	}
	return bytes.Count(content[:position], []byte{'\n'})
}

// CleanPath is the form in which the editor stores and compares file paths.
func CleanPath(p string) string {
	if p == "" {
		return p
	}
	return filepath.Clean(p)
}
