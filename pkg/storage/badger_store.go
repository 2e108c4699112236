package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"doc-splitter/pkg/log"
	"doc-splitter/pkg/models"
	"doc-splitter/pkg/utils"
)

const (
	docKeyPrefix     = "doc:"        // Prefix for document record keys
	sectionKeyPrefix = "sec:"        // Prefix for section record keys
	sectionDBDir     = "sections_db" // Subdirectory name within stateDir for Badger files
)

// BadgerStore implements the SectionStore interface using BadgerDB
type BadgerStore struct {
	db  *badger.DB
	log *logrus.Entry
}

// NewBadgerStore initializes and returns a new BadgerStore for one source.
// When wipe is true any existing DB for the source is removed first, so the
// index is rebuilt from scratch.
func NewBadgerStore(stateDir, sourceKey string, wipe bool, logger *logrus.Entry) (*BadgerStore, error) {
	dbDirName := utils.SanitizeFilename(sourceKey) + "_" + sectionDBDir
	dbPath := filepath.Join(stateDir, dbDirName)

	if wipe {
		logger.Warnf("Wipe requested. REMOVING existing section DB: %s", dbPath)
		if err := os.RemoveAll(dbPath); err != nil {
			logger.Errorf("Failed to remove existing section DB %s: %v", dbPath, err)
		}
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot create state directory %s: %v", utils.ErrFilesystem, dbPath, err)
	}

	logger.Infof("Opening section database at: %s (wipe: %v)", dbPath, wipe)

	badgerLogger := log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogger).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open badger database at %s: %v", utils.ErrDatabase, dbPath, err)
	}

	return &BadgerStore{db: db, log: logger}, nil
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for BadgerDB transaction conflicts.
// Concurrent MVCC transactions on overlapping keys can return badger.ErrConflict;
// these resolve in microseconds, so a tight retry loop is sufficient.
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

func docKey(path string) []byte {
	return []byte(docKeyPrefix + path)
}

func sectionKey(path string, index int) []byte {
	return []byte(fmt.Sprintf("%s%s#%05d", sectionKeyPrefix, path, index))
}

// PutDocument replaces the stored record and sections for doc.Path.
func (s *BadgerStore) PutDocument(doc models.DocRecord, sections []models.SectionRecord) error {
	docVal, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal doc record for '%s': %v", utils.ErrDatabase, doc.Path, err)
	}

	err = s.dbUpdate(func(txn *badger.Txn) error {
		// Drop any previously stored sections for this document first; a
		// re-split may produce fewer sections than before.
		if err := deletePrefix(txn, []byte(sectionKeyPrefix+doc.Path+"#")); err != nil {
			return err
		}
		if err := txn.Set(docKey(doc.Path), docVal); err != nil {
			return err
		}
		for _, sec := range sections {
			secVal, err := json.Marshal(sec)
			if err != nil {
				return fmt.Errorf("marshal section %d of '%s': %v", sec.Index, doc.Path, err)
			}
			if err := txn.Set(sectionKey(doc.Path, sec.Index), secVal); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: store document '%s': %v", utils.ErrDatabase, doc.Path, err)
	}
	return nil
}

// GetDocument fetches a document's index record.
func (s *BadgerStore) GetDocument(path string) (models.DocRecord, models.DocStatus, error) {
	var rec models.DocRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.DocRecord{}, models.DocStatusNotFound, nil
	}
	if err != nil {
		return models.DocRecord{}, models.DocStatusDBError,
			fmt.Errorf("%w: get document '%s': %v", utils.ErrDatabase, path, err)
	}
	return rec, models.DocStatusIndexed, nil
}

// DeleteDocument removes a document and all its sections.
func (s *BadgerStore) DeleteDocument(path string) error {
	err := s.dbUpdate(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, []byte(sectionKeyPrefix+path+"#")); err != nil {
			return err
		}
		err := txn.Delete(docKey(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: delete document '%s': %v", utils.ErrDatabase, path, err)
	}
	return nil
}

// deletePrefix removes every key with the given prefix within txn.
func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

const snippetContext = 60 // Bytes of context kept on each side of a match

// Search scans stored sections for a case-insensitive substring match against
// the heading path and the section's plain text.
func (s *BadgerStore) Search(query string, maxResults int) ([]models.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	needle := strings.ToLower(query)

	var results []models.SearchResult
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sectionKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && len(results) < maxResults; it.Next() {
			var rec models.SectionRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}

			haystack := rec.PlainText
			if haystack == "" {
				haystack = rec.Body
			}
			headings := strings.Join(rec.HeadingPath, " > ")

			var snippet string
			switch {
			case strings.Contains(strings.ToLower(headings), needle):
				snippet = headings
			case strings.Contains(strings.ToLower(haystack), needle):
				snippet = makeSnippet(haystack, needle)
			default:
				continue
			}

			results = append(results, models.SearchResult{
				DocPath:     rec.DocPath,
				HeadingPath: rec.HeadingPath,
				Level:       rec.Level,
				Line:        rec.Line,
				Snippet:     snippet,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", utils.ErrDatabase, err)
	}
	return results, nil
}

// makeSnippet trims text around the first occurrence of needle. The window
// edges are clamped to rune boundaries so multi-byte characters are never cut.
func makeSnippet(text, needle string) string {
	idx := strings.Index(strings.ToLower(text), needle)
	if idx < 0 {
		return ""
	}
	start := idx - snippetContext
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	end := idx + len(needle) + snippetContext
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	snippet := strings.TrimSpace(text[start:end])
	snippet = strings.ReplaceAll(snippet, "\n", " ")
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(text) {
		snippet += "…"
	}
	return snippet
}

// DocCount returns the number of indexed documents.
func (s *BadgerStore) DocCount() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(docKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count documents: %v", utils.ErrDatabase, err)
	}
	return count, nil
}

// DocPaths lists the paths of every indexed document.
func (s *BadgerStore) DocPaths() ([]string, error) {
	var paths []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(docKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			paths = append(paths, string(key[len(docKeyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", utils.ErrDatabase, err)
	}
	return paths, nil
}

// RunGC periodically runs BadgerDB's value log garbage collection until the
// context is cancelled.
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Stopping BadgerDB GC loop")
			return
		case <-ticker.C:
		again:
			err := s.db.RunValueLogGC(0.5)
			if err == nil {
				goto again
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Warnf("BadgerDB value log GC: %v", err)
			}
		}
	}
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	s.log.Debug("Closing section database")
	return s.db.Close()
}
