// Package index walks documentation source directories, splits every
// document into sections, and stores the results for search.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"doc-splitter/pkg/config"
	"doc-splitter/pkg/ingest"
	"doc-splitter/pkg/models"
	"doc-splitter/pkg/process"
	"doc-splitter/pkg/splitter"
	"doc-splitter/pkg/storage"
	"doc-splitter/pkg/utils"
)

// Indexer splits and stores every document below a source directory.
type Indexer struct {
	appCfg     config.AppConfig
	srcCfg     config.SourceConfig
	sourceKey  string
	store      storage.SectionStore
	loader     *ingest.Loader
	exclude    []*regexp.Regexp
	extensions []string
	maxLevel   int
	log        *logrus.Entry

	// OnDocDone, when set, is called once per processed document with its
	// final status. Used for job progress reporting.
	OnDocDone func(models.DocStatus)
}

// NewIndexer creates an Indexer for one configured source.
func NewIndexer(appCfg config.AppConfig, srcCfg config.SourceConfig, sourceKey string, store storage.SectionStore, logger *logrus.Logger) (*Indexer, error) {
	exclude, err := utils.CompileRegexPatterns(srcCfg.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	entry := logger.WithField("source", sourceKey)
	return &Indexer{
		appCfg:     appCfg,
		srcCfg:     srcCfg,
		sourceKey:  sourceKey,
		store:      store,
		loader:     ingest.NewLoader(config.GetEffectiveContentSelector(srcCfg, appCfg), entry),
		exclude:    exclude,
		extensions: config.GetEffectiveIncludeExtensions(srcCfg, appCfg),
		maxLevel:   config.GetEffectiveMaxSplitLevel(srcCfg, appCfg),
		log:        entry,
	}, nil
}

// Run indexes the whole source directory. Individual document failures are
// logged and counted, not fatal; Run only returns an error when the walk
// itself fails or the context is cancelled.
func (ix *Indexer) Run(ctx context.Context) (models.IndexSummary, error) {
	start := time.Now()

	files, err := ix.collectFiles()
	if err != nil {
		return models.IndexSummary{}, err
	}
	ix.log.Infof("Found %d candidate documents under %s", len(files), ix.srcCfg.Dir)

	var indexed, skipped, failed, sections atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.appCfg.NumWorkers)
	for _, relPath := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			status, sectionCount, err := ix.indexFile(relPath)
			switch status {
			case models.DocStatusIndexed:
				indexed.Add(1)
				sections.Add(int64(sectionCount))
			case models.DocStatusSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
				ix.log.WithField("doc", relPath).
					Errorf("Indexing failed (%s): %v", utils.CategorizeError(err), err)
			}
			if ix.OnDocDone != nil {
				ix.OnDocDone(status)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.IndexSummary{}, err
	}

	pruned, err := ix.pruneDeleted(files)
	if err != nil {
		return models.IndexSummary{}, err
	}

	summary := models.IndexSummary{
		DocsIndexed:  int(indexed.Load()),
		DocsSkipped:  int(skipped.Load()),
		DocsFailed:   int(failed.Load()),
		DocsPruned:   pruned,
		SectionCount: int(sections.Load()),
		Elapsed:      time.Since(start),
	}
	ix.log.Infof("Index run finished: %d indexed, %d unchanged, %d failed, %d pruned, %d sections in %v",
		summary.DocsIndexed, summary.DocsSkipped, summary.DocsFailed, summary.DocsPruned,
		summary.SectionCount, summary.Elapsed)
	return summary, nil
}

// pruneDeleted removes stored documents whose source file no longer exists
// (or is no longer picked up by the extension and exclude filters), so stale
// sections do not linger in search results.
func (ix *Indexer) pruneDeleted(files []string) (int, error) {
	current := make(map[string]struct{}, len(files))
	for _, f := range files {
		current[f] = struct{}{}
	}

	stored, err := ix.store.DocPaths()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, path := range stored {
		if _, ok := current[path]; ok {
			continue
		}
		if err := ix.store.DeleteDocument(path); err != nil {
			return pruned, err
		}
		ix.log.Infof("Pruned document no longer in source: %s", path)
		pruned++
	}
	return pruned, nil
}

// collectFiles walks the source dir and returns relative paths of documents
// matching the extension filter and not excluded by pattern.
func (ix *Indexer) collectFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(ix.srcCfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !slices.Contains(ix.extensions, strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		relPath, err := filepath.Rel(ix.srcCfg.Dir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		for _, re := range ix.exclude {
			if re.MatchString(relPath) {
				ix.log.Debugf("Excluded by pattern %s: %s", re.String(), relPath)
				return nil
			}
		}
		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking '%s': %v", utils.ErrFilesystem, ix.srcCfg.Dir, err)
	}
	return files, nil
}

// indexFile ingests, splits, and stores a single document. The source file
// is hashed before any ingestion work so unchanged documents are skipped
// without paying for HTML conversion.
func (ix *Indexer) indexFile(relPath string) (models.DocStatus, int, error) {
	absPath := filepath.Join(ix.srcCfg.Dir, relPath)

	hash, err := utils.CalculateFileSHA256(absPath)
	if err != nil {
		return models.DocStatusFailed, 0, fmt.Errorf("%w: %w", utils.ErrInputAcquisition, err)
	}
	existing, status, err := ix.store.GetDocument(relPath)
	if err != nil {
		return models.DocStatusFailed, 0, err
	}
	if status == models.DocStatusIndexed && existing.ContentHash == hash {
		ix.log.Debugf("Unchanged, skipping: %s", relPath)
		return models.DocStatusSkipped, 0, nil
	}

	content, format, err := ix.loader.Load(absPath)
	if err != nil {
		return models.DocStatusFailed, 0, err
	}

	root := splitter.Split(content, splitter.Options{MaxSplitLevel: ix.maxLevel})
	records := sectionRecords(relPath, root)

	doc := models.DocRecord{
		Path:         relPath,
		ContentHash:  hash,
		SectionCount: len(records),
		IndexedAt:    time.Now().UTC(),
		SourceFormat: format,
	}
	if err := ix.store.PutDocument(doc, records); err != nil {
		return models.DocStatusFailed, 0, err
	}
	return models.DocStatusIndexed, len(records), nil
}

// sectionRecords converts a section tree into storable records. The level-0
// root is included only when it carries preamble text.
func sectionRecords(docPath string, root *models.Section) []models.SectionRecord {
	flat := splitter.Flatten(root)
	records := make([]models.SectionRecord, 0, len(flat))
	for _, fs := range flat {
		s := fs.Section
		if s.Level == 0 && strings.TrimSpace(s.Body) == "" {
			continue
		}
		records = append(records, models.SectionRecord{
			DocPath:     docPath,
			Index:       len(records),
			Level:       s.Level,
			Heading:     s.Heading,
			HeadingPath: fs.Path,
			Body:        s.Body,
			PlainText:   process.ExtractPlainText([]byte(s.Body)),
			TokenCount:  process.CountTokens(s.Body),
			Line:        s.Line,
		})
	}
	return records
}
