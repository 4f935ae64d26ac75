package project

import (
	"path/filepath"
	"regexp"
	"strings"
)

var htmlFile = regexp.MustCompile(`.*\.html?$`)

// coltExtensions are the file types COLT live-edits.
var coltExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".js":   true,
	".css":  true,
}

// IsHTML reports whether path names an HTML document.
func IsHTML(path string) bool {
	return htmlFile.MatchString(path)
}

// HasColtExtension reports whether path has a type COLT live-edits.
func HasColtExtension(path string) bool {
	return coltExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsColtFile reports whether path is a live-editable file of a project in
// the working set.
func IsColtFile(ws *WorkingSet, path string) bool {
	if path == "" || ws == nil || !HasColtExtension(path) {
		return false
	}
	_, ok := ws.Find(path)
	return ok
}
