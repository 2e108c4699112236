package storage

import "doc-splitter/pkg/models"

// SectionStore persists split documents and answers section queries.
// Implementations must be safe for concurrent use; the indexer writes from
// multiple goroutines.
type SectionStore interface {
	// PutDocument replaces the stored record and sections for doc.Path.
	PutDocument(doc models.DocRecord, sections []models.SectionRecord) error
	// GetDocument fetches a document's index record. A missing document is
	// reported via DocStatusNotFound with a nil error.
	GetDocument(path string) (models.DocRecord, models.DocStatus, error)
	// DeleteDocument removes a document and all its sections.
	DeleteDocument(path string) error
	// Search returns up to maxResults sections whose heading or text contains
	// query (case-insensitive).
	Search(query string, maxResults int) ([]models.SearchResult, error)
	// DocCount returns the number of indexed documents.
	DocCount() (int, error)
	// DocPaths lists the paths of every indexed document.
	DocPaths() ([]string, error)
	Close() error
}
