package colt

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/coltlink/internal/editor"
)

// completionSuffix marks completions that came from COLT.
const completionSuffix = "[COLT]"

// Completion is one completion candidate.
type Completion struct {
	// Display is the name shown in the list.
	Display string
	// Hint is the full signature, or "" for properties.
	Hint string
	// Replacement is the text inserted on accept.
	Replacement string
}

// Label returns the list entry: the name, a tab, then the hint with the
// COLT marker.
func (c Completion) Label() string {
	return c.Display + "\t" + c.Hint + completionSuffix
}

// ParseCompletions decodes COLT's JSON-encoded completion array.
func ParseCompletions(encoded string) ([]Completion, error) {
	if !gjson.Valid(encoded) {
		return nil, fmt.Errorf("invalid completion payload %q", encoded)
	}
	result := gjson.Parse(encoded)
	if !result.IsArray() {
		return nil, fmt.Errorf("completion payload is not an array")
	}

	var out []Completion
	result.ForEach(func(_, item gjson.Result) bool {
		out = append(out, NewCompletion(item.String()))
		return true
	})
	return out, nil
}

// NewCompletion builds a completion from one raw entry. Callback
// placeholders "{})" are dropped, and function entries are split at the
// opening parenthesis so only the name is inserted.
func NewCompletion(raw string) Completion {
	raw = strings.ReplaceAll(raw, "{})", "")

	c := Completion{Display: raw, Replacement: raw}
	if i := strings.Index(raw, "("); i >= 0 {
		c.Replacement = raw[:i]
		c.Display = c.Replacement
		c.Hint = raw
	}
	return c
}

// CompletionPosition returns the offset of the dot whose properties should
// be completed for a caret at offset. The caret must sit right after the
// dot or inside a word that follows one.
func CompletionPosition(content []byte, offset int) (int, bool) {
	if editor.ByteAt(content, offset-1) == '.' {
		return offset - 1, true
	}
	start, _ := editor.WordAt(content, offset)
	if editor.ByteAt(content, start-1) == '.' {
		return start - 1, true
	}
	return 0, false
}
