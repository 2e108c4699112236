// Package splitter partitions markdown documents into section trees anchored
// at ATX headings. It is a single-pass, line-oriented transform: it only
// recognizes heading lines and code fence delimiters, never performing full
// markdown block parsing, and it cannot fail on any input. The produced tree
// is lossless: Reconstruct returns the original text byte for byte.
package splitter

import (
	"strings"

	"doc-splitter/pkg/models"
)

// Options controls how a document is split.
type Options struct {
	// MaxSplitLevel folds headings deeper than this level into body text
	// instead of starting a new section. Zero (or anything outside 1-6)
	// means split at every heading level.
	MaxSplitLevel int
}

// Split partitions a markdown document into a nested section tree.
//
// The returned root is always a level-0 section. Text before the first
// heading becomes the root's body; when the document starts with a heading
// (or is empty) the root is still materialized with an empty body, so
// downstream consumers always see the same root shape. Split holds no shared
// state and is safe to call concurrently on independent inputs.
func Split(text string, opts Options) *models.Section {
	maxLevel := opts.MaxSplitLevel
	if maxLevel <= 0 || maxLevel > 6 {
		maxLevel = 6
	}

	root := &models.Section{Level: 0}
	flat := []*models.Section{root}
	current := root
	var body strings.Builder

	sc := NewScanner(text)
	for ln, ok := sc.Next(); ok; ln, ok = sc.Next() {
		if !ln.InFence {
			if level, heading, isHeading := MatchHeading(ln.Text); isHeading && level <= maxLevel {
				current.Body = body.String()
				body.Reset()
				current = &models.Section{
					Level:       level,
					Heading:     heading,
					HeadingLine: ln.Raw,
					Line:        ln.Number,
				}
				flat = append(flat, current)
				continue
			}
		}
		body.WriteString(ln.Raw)
	}
	current.Body = body.String()

	return assemble(flat)
}
