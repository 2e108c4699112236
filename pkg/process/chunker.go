package process

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"doc-splitter/pkg/models"
)

// Chunk is a retrieval-sized piece of a document with its heading context.
type Chunk struct {
	Content     string   `json:"content"`      // Section body with ancestor heading lines prepended
	HeadingPath []string `json:"heading_path"` // Ancestor headings outermost first, own heading last
	TokenCount  int      `json:"token_count"`  // Token count for this chunk (-1 when tokenizer unavailable)
}

// ChunkerConfig holds configuration for the chunker.
type ChunkerConfig struct {
	MaxChunkTokens int // Budget per chunk; oversized sections get recursively split
	ChunkOverlap   int // Overlap between parts of a recursively split section
}

// DefaultChunkerConfig returns sensible defaults for RAG chunking.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxChunkTokens: 512,
		ChunkOverlap:   50,
	}
}

// ChunkSections converts a section tree produced by the splitter into chunks:
// one chunk per section, with every ancestor heading prepended so a chunk
// retrieved on its own still carries its position in the document. Sections
// whose body exceeds the token budget fall back to recursive character
// splitting; each resulting part keeps the same heading context.
func ChunkSections(root *models.Section, cfg ChunkerConfig) ([]Chunk, error) {
	lenFunc := func(s string) int {
		if n := CountTokens(s); n >= 0 {
			return n
		}
		// Rough chars-per-token approximation when no tokenizer is loaded.
		return len(s) / 4
	}

	recursiveSplitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(cfg.MaxChunkTokens),
		textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		textsplitter.WithLenFunc(lenFunc),
	)

	var chunks []Chunk
	var visit func(s *models.Section, header string, path []string) error
	visit = func(s *models.Section, header string, path []string) error {
		if s.Level > 0 {
			header += strings.Repeat("#", s.Level) + " " + s.Heading + "\n"
			path = append(path[:len(path):len(path)], s.Heading)
		}

		body := strings.TrimSpace(s.Body)
		if body != "" {
			content := header + body
			if lenFunc(content) <= cfg.MaxChunkTokens {
				chunks = append(chunks, Chunk{
					Content:     content,
					HeadingPath: path,
					TokenCount:  CountTokens(content),
				})
			} else {
				parts, err := recursiveSplitter.SplitText(body)
				if err != nil {
					return err
				}
				for _, part := range parts {
					if strings.TrimSpace(part) == "" {
						continue
					}
					content := header + part
					chunks = append(chunks, Chunk{
						Content:     content,
						HeadingPath: path,
						TokenCount:  CountTokens(content),
					})
				}
			}
		}

		for _, c := range s.Children {
			if err := visit(c, header, path); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(root, "", nil); err != nil {
		return nil, err
	}
	return chunks, nil
}
