package project

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Override keys read from <meta name="colt:KEY" content="VALUE"> tags.
const (
	OverrideRoot    = "root"
	OverrideProject = "project"
)

var (
	metaTag     = regexp.MustCompile(`(?is)<meta\s[^>]*>`)
	nameAttr    = regexp.MustCompile(`(?is)\bname\s*=\s*["']colt:([^"']+)["']`)
	contentAttr = regexp.MustCompile(`(?is)\bcontent\s*=\s*["']([^"']*)["']`)
)

// ParseOverrides returns the colt:KEY meta tags of an HTML document. The
// name and content attributes may come in either order. Later tags win.
func ParseOverrides(html string) map[string]string {
	out := make(map[string]string)
	for _, tag := range metaTag.FindAllString(html, -1) {
		name := nameAttr.FindStringSubmatch(tag)
		if name == nil {
			continue
		}
		content := contentAttr.FindStringSubmatch(tag)
		if content == nil {
			continue
		}
		out[strings.TrimSpace(name[1])] = strings.TrimSpace(content[1])
	}
	return out
}

// Apply returns p with the root and project file overridden. Relative
// values resolve against the main document's directory.
func (p Project) Apply(overrides map[string]string) Project {
	base := filepath.Dir(p.MainDocument)
	resolve := func(v string) string {
		if filepath.IsAbs(v) {
			return filepath.Clean(v)
		}
		return filepath.Join(base, v)
	}

	if v := overrides[OverrideRoot]; v != "" {
		p.Root = resolve(v)
	}
	if v := overrides[OverrideProject]; v != "" {
		p.ProjectFile = resolve(v)
	}
	return p
}

// New describes the project served from mainDocument. Its root is the
// document's directory unless the document overrides it; projectFile is
// used unless the document names one.
func New(mainDocument, projectFile string) (Project, error) {
	mainDocument, err := filepath.Abs(mainDocument)
	if err != nil {
		return Project{}, err
	}
	if projectFile != "" {
		if projectFile, err = filepath.Abs(projectFile); err != nil {
			return Project{}, err
		}
	}

	p := Project{
		Name:         strings.TrimSuffix(filepath.Base(mainDocument), filepath.Ext(mainDocument)),
		MainDocument: mainDocument,
		ProjectFile:  projectFile,
		Root:         filepath.Dir(mainDocument),
	}

	if IsHTML(mainDocument) {
		data, err := os.ReadFile(mainDocument)
		if err != nil {
			return Project{}, NewPathError("read main document", mainDocument, err)
		}
		p = p.Apply(ParseOverrides(string(data)))
	}

	if p.ProjectFile == "" {
		return Project{}, fmt.Errorf("%w for %s", ErrNoProjectFile, mainDocument)
	}
	return p, nil
}
