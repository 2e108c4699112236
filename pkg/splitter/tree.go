package splitter

import (
	"strings"

	"doc-splitter/pkg/models"
)

// assemble nests a flat, document-ordered section list by heading level.
// flat[0] must be the level-0 root. Each following section is attached as the
// last child of the nearest preceding section with a strictly smaller level,
// so a level-3 heading directly after a level-1 heading nests under the
// level-1 section rather than under a synthetic level-2 node.
func assemble(flat []*models.Section) *models.Section {
	root := flat[0]
	stack := []*models.Section{root}
	for _, s := range flat[1:] {
		for len(stack) > 1 && stack[len(stack)-1].Level >= s.Level {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, s)
		stack = append(stack, s)
	}
	return root
}

// Walk visits every section of the tree in pre-order (document order).
func Walk(root *models.Section, fn func(*models.Section)) {
	fn(root)
	for _, c := range root.Children {
		Walk(c, fn)
	}
}

// Reconstruct reassembles the original document from a section tree produced
// by Split. The result equals the Split input byte for byte.
func Reconstruct(root *models.Section) string {
	var b strings.Builder
	Walk(root, func(s *models.Section) {
		b.WriteString(s.HeadingLine)
		b.WriteString(s.Body)
	})
	return b.String()
}

// FlatSection pairs a section with the chain of headings leading to it.
type FlatSection struct {
	Section *models.Section
	// Path holds ancestor headings outermost first, ending with the
	// section's own heading. Empty for the level-0 root.
	Path []string
}

// Flatten returns the tree in document order with heading paths attached.
// The level-0 root is included as the first element.
func Flatten(root *models.Section) []FlatSection {
	var out []FlatSection
	var visit func(s *models.Section, path []string)
	visit = func(s *models.Section, path []string) {
		if s.Level > 0 {
			path = append(path[:len(path):len(path)], s.Heading)
		}
		out = append(out, FlatSection{Section: s, Path: path})
		for _, c := range s.Children {
			visit(c, path)
		}
	}
	visit(root, nil)
	return out
}

// HeadingPaths lists every heading in the tree as a sep-joined path, in
// document order. The root contributes nothing.
func HeadingPaths(root *models.Section, sep string) []string {
	flat := Flatten(root)
	paths := make([]string, 0, len(flat))
	for _, fs := range flat {
		if fs.Section.Level == 0 {
			continue
		}
		paths = append(paths, strings.Join(fs.Path, sep))
	}
	return paths
}
