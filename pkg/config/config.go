package config

// SourceConfig holds configuration specific to a single documentation source
// directory registered for indexing.
type SourceConfig struct {
	Dir               string   `yaml:"dir"`                          // Root directory to walk
	IncludeExtensions []string `yaml:"include_extensions,omitempty"` // Overrides global list when set
	ExcludePatterns   []string `yaml:"exclude_patterns,omitempty"`   // Regex patterns for relative paths to skip
	ContentSelector   string   `yaml:"content_selector,omitempty"`   // CSS selector for HTML ingestion
	MaxSplitLevel     *int     `yaml:"max_split_level,omitempty"`    // Override of the global split depth
}

// AppConfig holds the global application configuration
type AppConfig struct {
	StateDir          string                  `yaml:"state_dir"`                    // Where the section DB lives
	NumWorkers        int                     `yaml:"num_workers"`                  // Concurrent files during indexing
	MaxSplitLevel     int                     `yaml:"max_split_level,omitempty"`    // 0 = split at every heading level
	ContentSelector   string                  `yaml:"content_selector,omitempty"`   // Default selector for HTML ingestion
	IncludeExtensions []string                `yaml:"include_extensions,omitempty"` // File extensions picked up by the indexer
	TokenEncoding     string                  `yaml:"token_encoding,omitempty"`     // tiktoken encoding name
	MaxChunkTokens    int                     `yaml:"max_chunk_tokens,omitempty"`   // Chunker budget per chunk
	ChunkOverlap      int                     `yaml:"chunk_overlap,omitempty"`      // Overlap for the recursive fallback
	Sources           map[string]SourceConfig `yaml:"sources"`
}

// GetEffectiveMaxSplitLevel determines the split depth for a source
func GetEffectiveMaxSplitLevel(srcCfg SourceConfig, appCfg AppConfig) int {
	if srcCfg.MaxSplitLevel != nil {
		return *srcCfg.MaxSplitLevel
	}
	return appCfg.MaxSplitLevel
}

// GetEffectiveContentSelector determines the content selector for a source
// Source config (if non-empty) overrides global; empty falls back to "body"
func GetEffectiveContentSelector(srcCfg SourceConfig, appCfg AppConfig) string {
	if srcCfg.ContentSelector != "" {
		return srcCfg.ContentSelector
	}
	if appCfg.ContentSelector != "" {
		return appCfg.ContentSelector
	}
	return "body"
}

// GetEffectiveIncludeExtensions determines the extension filter for a source
func GetEffectiveIncludeExtensions(srcCfg SourceConfig, appCfg AppConfig) []string {
	if len(srcCfg.IncludeExtensions) > 0 {
		return srcCfg.IncludeExtensions
	}
	return appCfg.IncludeExtensions
}
