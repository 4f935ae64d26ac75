package editor

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Console is a Headless editor that also prints every visible change as a
// line of terminal output. Styling degrades to plain text when w is not a
// terminal.
type Console struct {
	*Headless

	mu  sync.Mutex
	out io.Writer

	// shown remembers the last count label printed per view and marker,
	// since count markers are redrawn on every refresh.
	shown map[string]string

	errorStyle   lipgloss.Style
	countStyle   lipgloss.Style
	locStyle     lipgloss.Style
	dimStyle     lipgloss.Style
	statusStyle  lipgloss.Style
	consoleStyle lipgloss.Style
}

// NewConsole creates a console host writing to w.
func NewConsole(w io.Writer, opts ...HeadlessOption) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		Headless:     NewHeadless(opts...),
		out:          w,
		shown:        make(map[string]string),
		errorStyle:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		countStyle:   r.NewStyle().Foreground(lipgloss.Color("33")),
		locStyle:     r.NewStyle().Foreground(lipgloss.Color("81")),
		dimStyle:     r.NewStyle().Foreground(lipgloss.Color("240")),
		statusStyle:  r.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		consoleStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
	}
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, line)
}

func (c *Console) location(id ViewID, position int) string {
	path := c.Headless.FilePath(id)
	row := c.Headless.RowOf(id, position)
	return c.locStyle.Render(fmt.Sprintf("%s:%d", filepath.Base(path), row+1))
}

// AddAnnotation implements Editor.
func (c *Console) AddAnnotation(id ViewID, key string, position int, icon Icon) {
	if !c.Headless.IsOpen(id) {
		return
	}
	c.Headless.AddAnnotation(id, key, position, icon)

	var mark string
	switch icon.Kind {
	case IconError:
		mark = c.errorStyle.Render("✖ error")
	case IconCount:
		shownKey := fmt.Sprintf("%d/%s", id, key)
		if c.shown[shownKey] == icon.Label {
			return
		}
		c.shown[shownKey] = icon.Label
		mark = c.countStyle.Render("● " + icon.Label)
	default:
		mark = icon.Kind.String()
	}
	c.println(fmt.Sprintf("%s %s", c.location(id, position), mark))
}

// RemoveAnnotation implements Editor.
func (c *Console) RemoveAnnotation(id ViewID, key string) {
	if !c.Headless.IsOpen(id) {
		return
	}
	for _, a := range c.Headless.Annotations(id) {
		if a.ID == key && a.Icon.Kind == IconError {
			c.println(fmt.Sprintf("%s %s", c.location(id, a.Position), c.dimStyle.Render("cleared")))
			break
		}
	}
	c.Headless.RemoveAnnotation(id, key)
}

// SetStatusText implements Editor.
func (c *Console) SetStatusText(id ViewID, key, text string) {
	prev, had := c.Headless.StatusText(id, key)
	c.Headless.SetStatusText(id, key, text)
	if had && prev == text {
		return
	}
	c.println(c.statusStyle.Render(fmt.Sprintf(" %s ", text)))
}

// AppendConsole implements Editor.
func (c *Console) AppendConsole(text string) {
	c.Headless.AppendConsole(text)
	c.println(text)
}

// RevealConsole implements Editor.
func (c *Console) RevealConsole() {
	if c.Headless.ConsoleVisible() {
		return
	}
	c.Headless.RevealConsole()
	c.println(c.consoleStyle.Render("── COLT console ──"))
}
