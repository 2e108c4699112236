package splitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchHeading(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		level   int
		heading string
		ok      bool
	}{
		{"h1", "# Title", 1, "Title", true},
		{"h2", "## Sub", 2, "Sub", true},
		{"h6", "###### Deep", 6, "Deep", true},
		{"seven hashes", "####### Too deep", 0, "", false},
		{"no space after hashes", "#hashtag", 0, "", false},
		{"bare hash", "#", 1, "", true},
		{"hashes only", "###", 3, "", true},
		{"tab separator", "#\tTitle", 1, "Title", true},
		{"leading space ok", "   # Indented", 1, "Indented", true},
		{"four leading spaces", "    # Code", 0, "", false},
		{"closing markers", "## Sub ##", 2, "Sub", true},
		{"closing markers with trailing space", "# Title ### ", 1, "Title", true},
		{"hash glued to text kept", "# C#", 1, "C#", true},
		{"only closing markers", "# ##", 1, "", true},
		{"trailing whitespace stripped", "# Title   ", 1, "Title", true},
		{"plain text", "just text", 0, "", false},
		{"empty line", "", 0, "", false},
		{"setext underline not a heading", "===", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, heading, ok := MatchHeading(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.heading, heading)
		})
	}
}
