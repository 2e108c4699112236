// Package ingest acquires input text for the splitter. The splitter itself
// never fails; everything that can go wrong while producing its input buffer
// (unreadable files, bad encodings, HTML extraction) is surfaced here as an
// input acquisition error, kept distinct from splitting logic.
package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"doc-splitter/pkg/utils"
)

// FormatMarkdown and FormatHTML identify how a document was acquired.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// fallbackSelectors are tried in order when the configured content selector
// matches nothing in an HTML document.
var fallbackSelectors = []string{"main", "article", "[role=main]", "#content", "body"}

// Loader reads documentation source files and produces the markdown text
// buffer the splitter consumes.
type Loader struct {
	contentSelector string
	log             *logrus.Entry
}

// NewLoader creates a Loader. contentSelector is the CSS selector used to
// pick the main content of HTML documents; empty means "body".
func NewLoader(contentSelector string, logger *logrus.Entry) *Loader {
	if contentSelector == "" {
		contentSelector = "body"
	}
	return &Loader{contentSelector: contentSelector, log: logger}
}

// Load reads path and returns its content as markdown text. HTML files are
// reduced to their main content and converted; markdown and plain text files
// are returned as-is after encoding validation.
func (l *Loader) Load(path string) (content, format string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", utils.ErrInputAcquisition, err)
	}
	return l.LoadBytes(data, filepath.Ext(path))
}

// LoadBytes classifies raw file content by extension and produces markdown.
func (l *Loader) LoadBytes(data []byte, ext string) (content, format string, err error) {
	if !utf8.Valid(data) {
		return "", "", fmt.Errorf("%w: content is not valid UTF-8", utils.ErrInputAcquisition)
	}

	switch strings.ToLower(ext) {
	case ".html", ".htm":
		markdown, err := l.htmlToMarkdown(data)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", utils.ErrInputAcquisition, err)
		}
		return markdown, FormatHTML, nil
	default:
		return string(data), FormatMarkdown, nil
	}
}

// htmlToMarkdown extracts the main content of an HTML document and converts
// it to markdown.
func (l *Loader) htmlToMarkdown(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: HTML parse: %v", utils.ErrHTMLConversion, err)
	}

	selection := doc.Find(l.contentSelector)
	if selection.Length() == 0 {
		for _, candidate := range fallbackSelectors {
			if candidate == l.contentSelector {
				continue
			}
			selection = doc.Find(candidate)
			if selection.Length() > 0 {
				if l.log != nil {
					l.log.Debugf("Content selector '%s' matched nothing, fell back to '%s'",
						l.contentSelector, candidate)
				}
				break
			}
		}
	}
	if selection.Length() == 0 {
		return "", fmt.Errorf("%w: no content matched selector '%s' or any fallback",
			utils.ErrHTMLConversion, l.contentSelector)
	}

	contentHTML, err := selection.First().Html()
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrHTMLConversion, err)
	}

	// One converter per call: the converter carries rule state and the
	// indexer loads files concurrently.
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(contentHTML)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrHTMLConversion, err)
	}
	return markdown, nil
}
