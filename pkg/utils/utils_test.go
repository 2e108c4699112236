package utils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-splitter/pkg/models"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "docs", "docs"},
		{"path separators", "docs/api/v2", "docs_api_v2"},
		{"invalid chars", `a<b>:c"?*`, "a_b_c"},
		{"collapses underscores", "a___b", "a_b"},
		{"empty becomes untitled", "", "untitled"},
		{"only invalid chars", "///", "untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestCalculateFileSHA256(t *testing.T) {
	path := t.TempDir() + "/doc.md"
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	fileHash, err := CalculateFileSHA256(path)
	require.NoError(t, err)
	assert.Equal(t, "ed7002b439e9ac845f22357d822bac1444730fbdb6016d3ec9432297b9ec9f73", fileHash)

	_, err = CalculateFileSHA256(path + ".missing")
	assert.Error(t, err)
}

func TestCompileRegexPatterns(t *testing.T) {
	compiled, err := CompileRegexPatterns([]string{`\.draft\.md$`, "", `^vendor/`})
	require.NoError(t, err)
	assert.Len(t, compiled, 2)

	_, err = CompileRegexPatterns([]string{`[invalid`})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigValidation)
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "None"},
		{"input missing file", fmt.Errorf("%w: %w", ErrInputAcquisition, os.ErrNotExist), "Input_NotExist"},
		{"input encoding", fmt.Errorf("%w: file is not valid UTF-8", ErrInputAcquisition), "Input_Encoding"},
		{"input html", fmt.Errorf("%w: %w", ErrInputAcquisition, ErrHTMLConversion), "Input_HTMLConversion"},
		{"input other", fmt.Errorf("%w: odd", ErrInputAcquisition), "Input_Other"},
		{"filesystem", fmt.Errorf("%w: disk on fire", ErrFilesystem), "Filesystem_Other"},
		{"database", fmt.Errorf("%w: txn", ErrDatabase), "Database_Other"},
		{"config", fmt.Errorf("%w: bad", ErrConfigValidation), "Config_Validation"},
		{"canceled", context.Canceled, "System_ContextCanceled"},
		{"unknown", fmt.Errorf("mystery"), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CategorizeError(tt.err))
		})
	}
}

func TestWriteOutline(t *testing.T) {
	root := &models.Section{Level: 0, Children: []*models.Section{
		{Level: 1, Heading: "A", Children: []*models.Section{
			{Level: 2, Heading: "B"},
			{Level: 2, Heading: "C"},
		}},
		{Level: 1, Heading: ""},
	}}

	var b strings.Builder
	require.NoError(t, WriteOutline(&b, root, "doc.md"))

	expected := "doc.md\n" +
		"├── A\n" +
		"│   ├── B\n" +
		"│   └── C\n" +
		"└── (untitled)\n"
	assert.Equal(t, expected, b.String())
}
