package reconcile

import "github.com/dshills/coltlink/internal/editor"

// StatusKey is the status-text slot the projector writes.
const StatusKey = "colt"

// StatusProjector shows the error under the caret as status text.
type StatusProjector struct {
	state *State
	ed    editor.Editor
}

// NewStatusProjector creates a projector reading state.
func NewStatusProjector(state *State, ed editor.Editor) *StatusProjector {
	return &StatusProjector{state: state, ed: ed}
}

// Project updates view's status text for a selection starting at
// selectionStart. It never changes the annotation set.
func (p *StatusProjector) Project(view editor.ViewID, selectionStart int) {
	if !p.ed.IsOpen(view) {
		return
	}
	row := p.ed.RowOf(view, selectionStart)
	for _, a := range p.state.ForFile(p.ed.FilePath(view)) {
		if p.ed.RowOf(view, a.Position) == row {
			p.ed.SetStatusText(view, StatusKey, a.Message)
			return
		}
	}
	p.ed.ClearStatusText(view, StatusKey)
}
