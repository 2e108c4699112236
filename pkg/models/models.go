package models

import "time"

// Section is a contiguous region of a markdown document anchored to a heading.
// Level 0 is the synthetic root holding any preamble text that appears before
// the first heading; levels 1-6 correspond to ATX heading depths.
type Section struct {
	Level int `json:"level"`
	// Heading is the heading text with the '#' markers, closing marker run,
	// and surrounding whitespace stripped. Empty for the level-0 root.
	Heading string `json:"heading,omitempty"`
	// HeadingLine is the original heading line verbatim, including its line
	// terminator. Kept so a tree can be reassembled into the exact input.
	HeadingLine string `json:"heading_line,omitempty"`
	// Body holds the section's raw lines (terminators intact), excluding the
	// heading line and any lines owned by a nested child section.
	Body string `json:"body"`
	// Line is the 1-based line number of the heading (0 for the root).
	Line     int        `json:"line,omitempty"`
	Children []*Section `json:"children,omitempty"`
}

// SectionRecord stores one split section of an indexed document in the DB.
type SectionRecord struct {
	DocPath     string   `json:"doc_path"`              // Document path relative to its docs dir
	Index       int      `json:"index"`                 // Position in document order (pre-order)
	Level       int      `json:"level"`                 // Heading level (0 = preamble)
	Heading     string   `json:"heading,omitempty"`     // Trimmed heading text
	HeadingPath []string `json:"heading_path"`          // Ancestor headings outermost first, own heading last
	Body        string   `json:"body,omitempty"`        // Raw section body
	PlainText   string   `json:"plain_text,omitempty"`  // Markdown-stripped body, used for search
	TokenCount  int      `json:"token_count,omitempty"` // -1 when the tokenizer is unavailable
	Line        int      `json:"line,omitempty"`        // Heading line number in the source file
}

// DocRecord stores per-document index state in the DB.
type DocRecord struct {
	Path         string    `json:"path"`
	ContentHash  string    `json:"content_hash"` // SHA-256 of the source file, for change detection
	SectionCount int       `json:"section_count"`
	IndexedAt    time.Time `json:"indexed_at"`
	SourceFormat string    `json:"source_format,omitempty"` // "markdown" or "html"
}

// SearchResult is one section matched by a store query.
type SearchResult struct {
	DocPath     string   `json:"doc_path"`
	HeadingPath []string `json:"heading_path"`
	Level       int      `json:"level"`
	Line        int      `json:"line,omitempty"`
	Snippet     string   `json:"snippet,omitempty"`
}

// IndexSummary reports the outcome of one indexing run.
type IndexSummary struct {
	DocsIndexed  int           `json:"docs_indexed"`
	DocsSkipped  int           `json:"docs_skipped"` // Unchanged since the previous run
	DocsFailed   int           `json:"docs_failed"`
	DocsPruned   int           `json:"docs_pruned"` // Stored docs whose source file disappeared
	SectionCount int           `json:"section_count"`
	Elapsed      time.Duration `json:"elapsed"`
}
