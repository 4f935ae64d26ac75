package reconcile

import (
	"sort"
	"strconv"

	"github.com/dshills/coltlink/internal/editor"
)

// Key identifies an error annotation. At most one annotation exists per key.
// State stores FilePath in editor.CleanPath form.
type Key struct {
	FilePath string
	Position int
}

// Annotation is an error pinned to a source location.
type Annotation struct {
	Key
	// Message is the error text.
	Message string
	// Row is the zero-based row, as of the last time the annotation was
	// bound. It is -1 while the annotation has never been bound.
	Row int
	// View is the open view showing the annotation, or editor.NoView while
	// the file is not open. It is a weak handle; the view may have closed.
	View editor.ViewID
}

// ID returns the editor annotation ID.
func (a Annotation) ID() string {
	return errorID(a.Position)
}

func errorID(position int) string {
	return "error." + strconv.Itoa(position)
}

func countID(position int) string {
	return "counts." + strconv.Itoa(position)
}

type countMarker struct {
	view editor.ViewID
	id   string
}

// State is the annotation bookkeeping shared by the poller, the count
// refresh, and the status projector. It is owned by the event loop and is
// not safe for concurrent use.
type State struct {
	annotations  map[Key]*Annotation
	counts       []countMarker
	runtimeError string
}

// NewState creates an empty state.
func NewState() *State {
	return &State{annotations: make(map[Key]*Annotation)}
}

// Len returns the number of tracked error annotations.
func (s *State) Len() int {
	return len(s.annotations)
}

// Annotations returns copies of the tracked annotations ordered by file,
// then position.
func (s *State) Annotations() []Annotation {
	out := make([]Annotation, 0, len(s.annotations))
	for _, a := range s.annotations {
		out = append(out, *a)
	}
	sortAnnotations(out)
	return out
}

// ForFile returns copies of the annotations of filePath ordered by position.
func (s *State) ForFile(filePath string) []Annotation {
	filePath = editor.CleanPath(filePath)
	var out []Annotation
	for _, a := range s.annotations {
		if a.FilePath == filePath {
			out = append(out, *a)
		}
	}
	sortAnnotations(out)
	return out
}

// RuntimeError returns the latched runtime error message.
func (s *State) RuntimeError() string {
	return s.runtimeError
}

// latchRuntimeError records msg and reports whether it differs from the
// previously latched message.
func (s *State) latchRuntimeError(msg string) bool {
	if msg == s.runtimeError {
		return false
	}
	s.runtimeError = msg
	return true
}

// upsert creates or updates the annotation at k.
func (s *State) upsert(k Key, message string) *Annotation {
	k.FilePath = editor.CleanPath(k.FilePath)
	a, ok := s.annotations[k]
	if !ok {
		a = &Annotation{Key: k, Row: -1, View: editor.NoView}
		s.annotations[k] = a
	}
	a.Message = message
	return a
}

// bind draws a on an open view of its file. It reports whether a view was
// found; otherwise a stays pending.
func (s *State) bind(ed editor.Editor, a *Annotation) bool {
	view, ok := ed.FindOpenView(a.FilePath)
	if !ok {
		if a.View != editor.NoView && !ed.IsOpen(a.View) {
			a.View = editor.NoView
		}
		return false
	}
	if a.View != editor.NoView && a.View != view && ed.IsOpen(a.View) {
		ed.RemoveAnnotation(a.View, a.ID())
	}
	a.View = view
	a.Row = ed.RowOf(view, a.Position)
	ed.AddAnnotation(view, a.ID(), a.Position, editor.Icon{Kind: editor.IconError})
	return true
}

// stale reports whether a needs (re)binding.
func (s *State) stale(ed editor.Editor, a *Annotation) bool {
	return a.View == editor.NoView || !ed.IsOpen(a.View)
}

// erase removes a's drawn marker, if any.
func (s *State) erase(ed editor.Editor, a *Annotation) {
	if a.View != editor.NoView && ed.IsOpen(a.View) {
		ed.RemoveAnnotation(a.View, a.ID())
	}
}

// ClearFile removes every annotation of filePath, bound or pending.
func (s *State) ClearFile(ed editor.Editor, filePath string) {
	filePath = editor.CleanPath(filePath)
	for k, a := range s.annotations {
		if k.FilePath == filePath {
			s.erase(ed, a)
			delete(s.annotations, k)
		}
	}
}

// Clear removes every error annotation and count marker.
func (s *State) Clear(ed editor.Editor) {
	for k, a := range s.annotations {
		s.erase(ed, a)
		delete(s.annotations, k)
	}
	s.clearCounts(ed)
}

// Reset clears everything and forgets the latched runtime error. It runs
// when the last live session ends or the COLT connection drops.
func (s *State) Reset(ed editor.Editor) {
	s.Clear(ed)
	s.runtimeError = ""
}

func (s *State) clearCounts(ed editor.Editor) {
	for _, m := range s.counts {
		if ed.IsOpen(m.view) {
			ed.RemoveAnnotation(m.view, m.id)
		}
	}
	s.counts = nil
}

// errorOnRow reports whether an annotation of view's file sits on row.
func (s *State) errorOnRow(ed editor.Editor, view editor.ViewID, row int) bool {
	filePath := editor.CleanPath(ed.FilePath(view))
	for _, a := range s.annotations {
		if a.FilePath == filePath && ed.RowOf(view, a.Position) == row {
			return true
		}
	}
	return false
}

func sortAnnotations(as []Annotation) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].FilePath != as[j].FilePath {
			return as[i].FilePath < as[j].FilePath
		}
		return as[i].Position < as[j].Position
	})
}
