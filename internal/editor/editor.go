// Package editor defines the editor surface coltlink renders into and
// provides two hosts for it: Headless, an in-memory editor, and Console,
// which renders every change as a line of terminal output.
package editor

import "fmt"

// ViewID identifies an open editor view. It is a weak handle: a closed
// view's ID is never reused, and holding one does not keep the view open.
type ViewID int64

// NoView is the zero ViewID; no open view ever has it.
const NoView ViewID = 0

// IconKind selects the gutter icon of an annotation.
type IconKind int

const (
	// IconError marks a syntax or runtime error.
	IconError IconKind = iota
	// IconCount marks a function call count.
	IconCount
)

// String returns the icon name.
func (k IconKind) String() string {
	switch k {
	case IconError:
		return "error"
	case IconCount:
		return "count"
	default:
		return fmt.Sprintf("icon(%d)", int(k))
	}
}

// Icon is an annotation glyph. Label carries the count text for IconCount.
type Icon struct {
	Kind  IconKind
	Label string
}

// Editor is the host surface the reconciler drives.
//
// Implementations are called only from the host event loop.
type Editor interface {
	// FindOpenView returns an open view showing filePath.
	FindOpenView(filePath string) (ViewID, bool)
	// IsOpen reports whether view is still open.
	IsOpen(view ViewID) bool
	// FilePath returns the file shown by view, or "" if it is closed.
	FilePath(view ViewID) string
	// RowOf converts a byte offset in view's file to a zero-based row.
	// It returns -1 when the view is closed.
	RowOf(view ViewID, position int) int

	// AddAnnotation draws (or replaces) the annotation id at position.
	AddAnnotation(view ViewID, id string, position int, icon Icon)
	// RemoveAnnotation erases the annotation id.
	RemoveAnnotation(view ViewID, id string)

	// SetStatusText sets transient status text under key.
	SetStatusText(view ViewID, key, text string)
	// ClearStatusText removes the status text under key.
	ClearStatusText(view ViewID, key string)

	// AppendConsole appends a line to the output console.
	AppendConsole(text string)
	// RevealConsole brings the output console into view.
	RevealConsole()

	// Save writes view's buffer to disk.
	Save(view ViewID) error
}

// Listener receives host events. The host invokes it on the event loop.
type Listener interface {
	OnActivated(view ViewID)
	OnModified(view ViewID)
	OnSelectionModified(view ViewID, selectionStart int)
	OnClosed(view ViewID)
}
