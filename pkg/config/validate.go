package config

import (
	"fmt"

	"doc-splitter/pkg/utils"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// NumWorkers
	if c.NumWorkers <= 0 {
		warnings = append(warnings, "num_workers should be > 0, defaulting to 4")
		c.NumWorkers = 4
	}

	// StateDir
	if c.StateDir == "" {
		warnings = append(warnings, "state_dir is empty, defaulting to './splitter_state'")
		c.StateDir = "./splitter_state"
	}

	// MaxSplitLevel
	if c.MaxSplitLevel < 0 || c.MaxSplitLevel > 6 {
		warnings = append(warnings, fmt.Sprintf(
			"max_split_level %d is outside 0-6, defaulting to 0 (split at every level)",
			c.MaxSplitLevel))
		c.MaxSplitLevel = 0
	}

	// IncludeExtensions
	if len(c.IncludeExtensions) == 0 {
		c.IncludeExtensions = []string{".md", ".markdown", ".html", ".htm"}
	}

	// TokenEncoding: empty means the tokenizer default (cl100k_base)

	// Chunking
	if c.MaxChunkTokens <= 0 {
		warnings = append(warnings, "max_chunk_tokens should be > 0, defaulting to 512")
		c.MaxChunkTokens = 512
	}
	if c.ChunkOverlap < 0 {
		warnings = append(warnings, "chunk_overlap cannot be negative, setting to 0")
		c.ChunkOverlap = 0
	}
	if c.ChunkOverlap >= c.MaxChunkTokens {
		warnings = append(warnings, fmt.Sprintf(
			"chunk_overlap (%d) must be smaller than max_chunk_tokens (%d), defaulting to 50",
			c.ChunkOverlap, c.MaxChunkTokens))
		c.ChunkOverlap = 50
	}

	return warnings, nil
}

// Validate checks SourceConfig fields.
// Returns collected warnings and any fatal error.
func (s *SourceConfig) Validate() (warnings []string, err error) {
	if s.Dir == "" {
		return warnings, fmt.Errorf("%w: source 'dir' is required", utils.ErrConfigValidation)
	}

	if _, err := utils.CompileRegexPatterns(s.ExcludePatterns); err != nil {
		return warnings, err
	}

	if s.MaxSplitLevel != nil && (*s.MaxSplitLevel < 0 || *s.MaxSplitLevel > 6) {
		warnings = append(warnings, fmt.Sprintf(
			"max_split_level %d is outside 0-6 and will be ignored", *s.MaxSplitLevel))
		s.MaxSplitLevel = nil
	}

	return warnings, nil
}
