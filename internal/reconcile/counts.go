package reconcile

import (
	"context"
	"strconv"

	"github.com/dshills/coltlink/internal/editor"
)

// maxCountLabel is the highest count drawn as a number.
const maxCountLabel = 9

// CountLabel returns the marker text for a call count.
func CountLabel(count int) string {
	if count > maxCountLabel {
		return "many"
	}
	return strconv.Itoa(count)
}

// Counts redraws the call-count markers.
type Counts struct {
	state    *State
	src      Source
	sessions Sessions
	ed       editor.Editor
	opts     options
}

// NewCounts creates a count refresher sharing state with a Poller.
func NewCounts(state *State, src Source, sessions Sessions, ed editor.Editor, opts ...Option) *Counts {
	return &Counts{
		state:    state,
		src:      src,
		sessions: sessions,
		ed:       ed,
		opts:     newOptions(opts),
	}
}

// Refresh clears every marker it drew before and draws the current counts.
// A marker is skipped on rows that carry an error annotation.
func (c *Counts) Refresh(ctx context.Context) {
	c.state.clearCounts(c.ed)

	if !c.sessions.Session().Active {
		return
	}

	counts, err := c.src.GetMethodCounts(ctx)
	if err != nil {
		c.opts.log.Debug("poll method counts: %v", err)
		return
	}

	for _, mc := range counts {
		if mc.Count <= 0 {
			continue
		}
		view, ok := c.ed.FindOpenView(mc.FilePath)
		if !ok {
			continue
		}
		row := c.ed.RowOf(view, mc.Position)
		if c.state.errorOnRow(c.ed, view, row) {
			continue
		}

		id := countID(mc.Position)
		c.ed.AddAnnotation(view, id, mc.Position, editor.Icon{Kind: editor.IconCount, Label: CountLabel(mc.Count)})
		c.state.counts = append(c.state.counts, countMarker{view: view, id: id})
	}
}
