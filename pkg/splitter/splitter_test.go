package splitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-splitter/pkg/models"
)

func TestSplit_BasicSplit(t *testing.T) {
	root := Split("# Title\nintro\n## Sub\nbody\n", Options{})

	assert.Equal(t, 0, root.Level)
	assert.Empty(t, root.Body)
	require.Len(t, root.Children, 1)

	title := root.Children[0]
	assert.Equal(t, 1, title.Level)
	assert.Equal(t, "Title", title.Heading)
	assert.Equal(t, "intro\n", title.Body)
	require.Len(t, title.Children, 1)

	sub := title.Children[0]
	assert.Equal(t, 2, sub.Level)
	assert.Equal(t, "Sub", sub.Heading)
	assert.Equal(t, "body\n", sub.Body)
	assert.Empty(t, sub.Children)
}

func TestSplit_EmptyInput(t *testing.T) {
	root := Split("", Options{})
	assert.Equal(t, 0, root.Level)
	assert.Empty(t, root.Heading)
	assert.Empty(t, root.Body)
	assert.Empty(t, root.Children)
}

func TestSplit_NoHeadings(t *testing.T) {
	src := "just text\nmore text\n"
	root := Split(src, Options{})
	assert.Equal(t, src, root.Body)
	assert.Empty(t, root.Children)
}

func TestSplit_Preamble(t *testing.T) {
	root := Split("preamble line\n\n# First\nbody\n", Options{})
	assert.Equal(t, "preamble line\n\n", root.Body)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "First", root.Children[0].Heading)
}

func TestSplit_LevelSkipNesting(t *testing.T) {
	root := Split("# A\n### B\ntext\n", Options{})
	require.Len(t, root.Children, 1)
	a := root.Children[0]
	assert.Equal(t, 1, a.Level)
	require.Len(t, a.Children, 1, "level-3 heading must nest directly under the level-1 section")
	b := a.Children[0]
	assert.Equal(t, 3, b.Level)
	assert.Equal(t, "B", b.Heading)
	assert.Equal(t, "text\n", b.Body)
}

func TestSplit_SiblingsAfterDeepNesting(t *testing.T) {
	root := Split("# A\n## B\n### C\n## D\n# E\n", Options{})
	require.Len(t, root.Children, 2)
	a, e := root.Children[0], root.Children[1]
	assert.Equal(t, "A", a.Heading)
	assert.Equal(t, "E", e.Heading)
	require.Len(t, a.Children, 2)
	assert.Equal(t, "B", a.Children[0].Heading)
	assert.Equal(t, "D", a.Children[1].Heading)
	require.Len(t, a.Children[0].Children, 1)
	assert.Equal(t, "C", a.Children[0].Children[0].Heading)
}

func TestSplit_ChildLevelAlwaysGreater(t *testing.T) {
	src := "pre\n# A\n#### D\n## B\n### C\n###### F\n# Z\n"
	root := Split(src, Options{})
	Walk(root, func(s *models.Section) {
		for _, c := range s.Children {
			assert.Greater(t, c.Level, s.Level)
		}
	})
}

func TestSplit_NoHeadingInsideFence(t *testing.T) {
	src := "```\n# one\n## two\n```\n"
	root := Split(src, Options{})
	assert.Empty(t, root.Children, "fenced hash lines must not become headings")
	assert.Equal(t, src, root.Body)
}

func TestSplit_MismatchedFenceMarkers(t *testing.T) {
	src := "```\n~~~\n# hidden\n"
	root := Split(src, Options{})
	assert.Empty(t, root.Children)
	assert.Equal(t, src, root.Body)
}

func TestSplit_HeadingAfterClosedFence(t *testing.T) {
	root := Split("```\ncode\n```\n# Real\n", Options{})
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Real", root.Children[0].Heading)
	assert.Equal(t, "```\ncode\n```\n", root.Body)
}

func TestSplit_MaxSplitLevel(t *testing.T) {
	src := "# A\n## B\n### C\n"
	root := Split(src, Options{MaxSplitLevel: 2})
	require.Len(t, root.Children, 1)
	a := root.Children[0]
	require.Len(t, a.Children, 1)
	b := a.Children[0]
	assert.Equal(t, "B", b.Heading)
	assert.Equal(t, "### C\n", b.Body, "deeper headings fold into body text")
	assert.Empty(t, b.Children)
}

func TestSplit_RoundTrip(t *testing.T) {
	docs := []string{
		"",
		"no headings at all\n",
		"no trailing newline",
		"# Title\nintro\n## Sub\nbody\n",
		"preamble\n# A\n### B\ntext\n# C\n",
		"# H\n```go\n# comment\n```\ntail\n",
		"````\n```\n# deep\n````\nout\n",
		"crlf\r\n# Title\r\nbody\r\n",
		"# only heading",
		"#\nbare hash heading\n",
		"~~~text\nunterminated fence\n# hidden\n",
		"   # indented heading\nbody\n",
	}
	for _, src := range docs {
		for _, maxLevel := range []int{0, 1, 2, 6} {
			root := Split(src, Options{MaxSplitLevel: maxLevel})
			assert.Equal(t, src, Reconstruct(root), "max level %d, doc %q", maxLevel, src)
		}
	}
}

func TestSplit_HeadingLineKeptVerbatim(t *testing.T) {
	root := Split("## Sub ##\r\nbody\r\n", Options{})
	require.Len(t, root.Children, 1)
	s := root.Children[0]
	assert.Equal(t, "Sub", s.Heading)
	assert.Equal(t, "## Sub ##\r\n", s.HeadingLine)
	assert.Equal(t, 1, s.Line)
}

func TestFlatten_HeadingPaths(t *testing.T) {
	root := Split("# A\n## B\n### C\n## D\n", Options{})
	flat := Flatten(root)
	require.Len(t, flat, 5)
	assert.Empty(t, flat[0].Path)
	assert.Equal(t, []string{"A"}, flat[1].Path)
	assert.Equal(t, []string{"A", "B"}, flat[2].Path)
	assert.Equal(t, []string{"A", "B", "C"}, flat[3].Path)
	assert.Equal(t, []string{"A", "D"}, flat[4].Path)

	paths := HeadingPaths(root, " > ")
	assert.Equal(t, []string{"A", "A > B", "A > B > C", "A > D"}, paths)
}
