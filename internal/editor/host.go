package editor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnknownCommand is returned for host lines that do not parse.
var ErrUnknownCommand = errors.New("unknown host command")

// Workspace is the view bookkeeping a Host needs.
type Workspace interface {
	Open(path string) ViewID
	Close(id ViewID)
	Reload(id ViewID) error
	FindOpenView(path string) (ViewID, bool)
}

// Command is one parsed host line.
type Command struct {
	Name   string
	Path   string
	Offset int
}

// ParseCommand parses a host line:
//
//	open PATH
//	activate PATH
//	close PATH
//	modified PATH
//	select PATH OFFSET
//
// Paths may contain spaces; the offset is always the last field.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "open", "activate", "close", "modified":
		if rest == "" {
			return Command{}, fmt.Errorf("%s: missing path", name)
		}
		return Command{Name: name, Path: rest}, nil
	case "select":
		i := strings.LastIndex(rest, " ")
		if i < 0 {
			return Command{}, fmt.Errorf("select: want PATH OFFSET, got %q", rest)
		}
		offset, err := strconv.Atoi(strings.TrimSpace(rest[i+1:]))
		if err != nil || offset < 0 {
			return Command{}, fmt.Errorf("select: bad offset %q", rest[i+1:])
		}
		return Command{Name: name, Path: strings.TrimSpace(rest[:i]), Offset: offset}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// Host turns host commands and file-change notices into Listener events.
// Every event is handed to post, which must run it on the event loop.
type Host struct {
	ws       Workspace
	listener Listener
	post     func(func())
	onError  func(error)
}

// NewHost creates a host. onError may be nil.
func NewHost(ws Workspace, listener Listener, post func(func()), onError func(error)) *Host {
	if onError == nil {
		onError = func(error) {}
	}
	return &Host{ws: ws, listener: listener, post: post, onError: onError}
}

// Run reads commands from r until EOF or ctx is done.
func (h *Host) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errCh
			}
			if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
				continue
			}
			cmd, err := ParseCommand(line)
			if err != nil {
				h.onError(err)
				continue
			}
			h.Dispatch(cmd)
		}
	}
}

// Dispatch posts cmd to the event loop.
func (h *Host) Dispatch(cmd Command) {
	path := absPath(cmd.Path)

	switch cmd.Name {
	case "open", "activate":
		h.post(func() {
			id := h.ws.Open(path)
			h.listener.OnActivated(id)
		})
	case "close":
		h.post(func() {
			if id, ok := h.ws.FindOpenView(path); ok {
				h.ws.Close(id)
				h.listener.OnClosed(id)
			}
		})
	case "modified":
		h.Modified(path)
	case "select":
		offset := cmd.Offset
		h.post(func() {
			id := h.ws.Open(path)
			h.listener.OnSelectionModified(id, offset)
		})
	}
}

// Modified reports an on-disk change of path. Files without an open view
// are ignored.
func (h *Host) Modified(path string) {
	path = absPath(path)
	h.post(func() {
		id, ok := h.ws.FindOpenView(path)
		if !ok {
			return
		}
		if err := h.ws.Reload(id); err != nil {
			h.onError(fmt.Errorf("reload %s: %w", path, err))
		}
		h.listener.OnModified(id)
	})
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
