package process

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractPlainText parses markdown and returns its text content with all
// markup stripped. The section store indexes this instead of raw markdown so
// a search for "hello" matches "**hello**". The splitter core never calls
// into goldmark; this is search-side processing only.
func ExtractPlainText(markdown []byte) string {
	reader := text.NewReader(markdown)
	parser := goldmark.DefaultParser()
	doc := parser.Parse(reader)

	var buf bytes.Buffer
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch n.(type) {
			case *ast.Paragraph, *ast.Heading, *ast.ListItem:
				buf.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(markdown))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.CodeSpan:
			buf.Write(node.Text(markdown))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			writeBlockLines(&buf, node, markdown)
		case *ast.CodeBlock:
			writeBlockLines(&buf, node, markdown)
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}

func writeBlockLines(buf *bytes.Buffer, node ast.Node, source []byte) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
}
