package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"doc-splitter/pkg/config"
	"doc-splitter/pkg/index"
	"doc-splitter/pkg/ingest"
	"doc-splitter/pkg/process"
	"doc-splitter/pkg/splitter"
	"doc-splitter/pkg/storage"
	"doc-splitter/pkg/utils"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "split":
		runSplit(os.Args[2:])
	case "toc":
		runTOC(os.Args[2:])
	case "chunk":
		runChunk(os.Args[2:])
	case "index":
		runIndex(os.Args[2:])
	case "search":
		runSearch(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "list-sources":
		runListSources(os.Args[2:])
	case "mcp-server":
		runMcpServer(os.Args[2:])
	case "version":
		fmt.Printf("doc-splitter %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `doc-splitter - Split markdown documentation into heading-anchored sections

Usage:
  doc-splitter <command> [options]

Commands:
  split         Split one document and print its section tree
  toc           Print a document's table of contents
  chunk         Split one document into token-bounded chunks
  index         Split and store every document of a configured source
  search        Search the section DB of an indexed source
  validate      Validate configuration file
  list-sources  List configured documentation sources
  mcp-server    Start an MCP server exposing the splitter
  version       Print version
  help          Show this help

Run 'doc-splitter <command> -h' for command options.`)
}

// newLogger builds the application logger in the standard format.
func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s'", level)
	}
	log.SetLevel(parsed)
	return log, nil
}

// loadConfig reads and validates the YAML config file. When allowMissing is
// true and the file does not exist, a default config is returned so the
// single-document commands work without any file at all.
func loadConfig(path string, allowMissing bool, log *logrus.Logger) (*config.AppConfig, error) {
	var appCfg config.AppConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && os.IsNotExist(err) {
			log.Debugf("No config file at %s, using defaults", path)
		} else {
			return nil, fmt.Errorf("read config file '%s': %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &appCfg); err != nil {
		return nil, fmt.Errorf("parse config file '%s': %w", path, err)
	}

	warnings, err := appCfg.Validate()
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Warn(w)
	}
	return &appCfg, nil
}

// loadDocument ingests one file and returns its markdown content.
func loadDocument(path, selector string, log *logrus.Logger) (string, error) {
	loader := ingest.NewLoader(selector, log.WithField("component", "ingest"))
	content, _, err := loader.Load(path)
	return content, err
}

// runSplit handles the split subcommand
func runSplit(args []string) {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to YAML config file (optional)")
	format := fs.String("format", "json", "Output format (json, outline, sections)")
	maxLevel := fs.Int("max-level", 0, "Only split at headings up to this level (0 = all)")
	selector := fs.String("selector", "", "CSS content selector for HTML input")
	outFile := fs.String("o", "", "Write an outline to this file in addition to the normal output")
	logLevel := fs.String("loglevel", "warn", "Log level (debug, info, warn, error)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: doc-splitter split [options] <file>")
		os.Exit(1)
	}

	os.Exit(doSplit(fs.Arg(0), *configFile, *format, *maxLevel, *selector, *outFile, *logLevel, os.Stdout, os.Stderr))
}

// doSplit is the testable implementation of the split subcommand.
func doSplit(path, configPath, format string, maxLevel int, selector, outFile, logLevel string, stdout, stderr io.Writer) int {
	log, err := newLogger(logLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	appCfg, err := loadConfig(configPath, true, log)
	if err != nil {
		log.Errorf("Config error: %v", err)
		return 1
	}
	if maxLevel == 0 {
		maxLevel = appCfg.MaxSplitLevel
	}
	if selector == "" {
		selector = appCfg.ContentSelector
	}

	content, err := loadDocument(path, selector, log)
	if err != nil {
		log.Errorf("Failed to read input (%s): %v", utils.CategorizeError(err), err)
		return 1
	}
	root := splitter.Split(content, splitter.Options{MaxSplitLevel: maxLevel})

	switch format {
	case "json":
		out, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			log.Errorf("Failed to serialize tree: %v", err)
			return 1
		}
		fmt.Fprintln(stdout, string(out))
	case "outline":
		if err := utils.WriteOutline(stdout, root, path); err != nil {
			log.Errorf("Failed to write outline: %v", err)
			return 1
		}
	case "sections":
		for i, flat := range splitter.Flatten(root) {
			if flat.Section.Level == 0 && flat.Section.Body == "" {
				continue
			}
			fmt.Fprintf(stdout, "Section %d\n---------\n%s%s---------\n",
				i, flat.Section.HeadingLine, flat.Section.Body)
		}
	default:
		log.Errorf("Unknown format: %s (supported: json, outline, sections)", format)
		return 1
	}

	if outFile != "" {
		if err := utils.SaveOutline(root, path, outFile, log.WithField("component", "outline")); err != nil {
			log.Errorf("Failed to save outline (%s): %v", utils.CategorizeError(err), err)
			return 1
		}
	}
	return 0
}

// runTOC handles the toc subcommand
func runTOC(args []string) {
	fs := flag.NewFlagSet("toc", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to YAML config file (optional)")
	separator := fs.String("sep", " > ", "Separator between nested headings")
	selector := fs.String("selector", "", "CSS content selector for HTML input")
	logLevel := fs.String("loglevel", "warn", "Log level")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: doc-splitter toc [options] <file>")
		os.Exit(1)
	}

	os.Exit(doTOC(fs.Arg(0), *configFile, *separator, *selector, *logLevel, os.Stdout, os.Stderr))
}

// doTOC is the testable implementation of the toc subcommand.
func doTOC(path, configPath, separator, selector, logLevel string, stdout, stderr io.Writer) int {
	log, err := newLogger(logLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	appCfg, err := loadConfig(configPath, true, log)
	if err != nil {
		log.Errorf("Config error: %v", err)
		return 1
	}
	if selector == "" {
		selector = appCfg.ContentSelector
	}

	content, err := loadDocument(path, selector, log)
	if err != nil {
		log.Errorf("Failed to read input (%s): %v", utils.CategorizeError(err), err)
		return 1
	}
	root := splitter.Split(content, splitter.Options{MaxSplitLevel: appCfg.MaxSplitLevel})

	for _, p := range splitter.HeadingPaths(root, separator) {
		fmt.Fprintln(stdout, p)
	}
	return 0
}

// runChunk handles the chunk subcommand
func runChunk(args []string) {
	fs := flag.NewFlagSet("chunk", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to YAML config file (optional)")
	maxTokens := fs.Int("max-tokens", 0, "Token budget per chunk (default from config)")
	overlap := fs.Int("overlap", -1, "Token overlap for oversized sections (default from config)")
	encoding := fs.String("encoding", "", "tiktoken encoding name (default cl100k_base)")
	selector := fs.String("selector", "", "CSS content selector for HTML input")
	logLevel := fs.String("loglevel", "warn", "Log level")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: doc-splitter chunk [options] <file>")
		os.Exit(1)
	}

	os.Exit(doChunk(fs.Arg(0), *configFile, *maxTokens, *overlap, *encoding, *selector, *logLevel, os.Stdout, os.Stderr))
}

// doChunk is the testable implementation of the chunk subcommand.
func doChunk(path, configPath string, maxTokens, overlap int, encoding, selector, logLevel string, stdout, stderr io.Writer) int {
	log, err := newLogger(logLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	appCfg, err := loadConfig(configPath, true, log)
	if err != nil {
		log.Errorf("Config error: %v", err)
		return 1
	}
	if encoding == "" {
		encoding = appCfg.TokenEncoding
	}
	if err := process.InitTokenizer(encoding); err != nil {
		log.Warnf("Tokenizer unavailable, falling back to character approximation: %v", err)
	}
	cfg := process.ChunkerConfig{MaxChunkTokens: appCfg.MaxChunkTokens, ChunkOverlap: appCfg.ChunkOverlap}
	if maxTokens > 0 {
		cfg.MaxChunkTokens = maxTokens
	}
	if overlap >= 0 {
		cfg.ChunkOverlap = overlap
	}
	if selector == "" {
		selector = appCfg.ContentSelector
	}

	content, err := loadDocument(path, selector, log)
	if err != nil {
		log.Errorf("Failed to read input (%s): %v", utils.CategorizeError(err), err)
		return 1
	}
	root := splitter.Split(content, splitter.Options{MaxSplitLevel: appCfg.MaxSplitLevel})

	chunks, err := process.ChunkSections(root, cfg)
	if err != nil {
		log.Errorf("Chunking failed: %v", err)
		return 1
	}
	out, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		log.Errorf("Failed to serialize chunks: %v", err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}

// runIndex handles the index subcommand
func runIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to YAML config file")
	sourceKey := fs.String("source", "", "Source key from config file (required)")
	wipe := fs.Bool("wipe", false, "Rebuild the section DB from scratch")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error)")
	fs.Parse(args)

	os.Exit(doIndex(*configFile, *sourceKey, *wipe, *logLevel, os.Stderr))
}

// doIndex is the testable implementation of the index subcommand.
func doIndex(configPath, sourceKey string, wipe bool, logLevel string, stderr io.Writer) int {
	log, err := newLogger(logLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	appCfg, err := loadConfig(configPath, false, log)
	if err != nil {
		log.Errorf("Config error: %v", err)
		return 1
	}
	if sourceKey == "" {
		log.Error("-source flag is required")
		return 1
	}
	srcCfg, ok := appCfg.Sources[sourceKey]
	if !ok {
		log.Errorf("Source key '%s' not found in config file '%s'", sourceKey, configPath)
		return 1
	}
	if warnings, err := srcCfg.Validate(); err != nil {
		log.Errorf("Source '%s' configuration error: %v", sourceKey, err)
		return 1
	} else {
		for _, w := range warnings {
			log.Warnf("[%s] %s", sourceKey, w)
		}
	}

	// Graceful shutdown on SIGINT/SIGTERM via context cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := process.InitTokenizer(appCfg.TokenEncoding); err != nil {
		log.Warnf("Tokenizer unavailable, section token counts will be -1: %v", err)
	}

	store, err := storage.NewBadgerStore(appCfg.StateDir, sourceKey, wipe, log.WithField("source", sourceKey))
	if err != nil {
		log.Errorf("Failed to open section store: %v", err)
		return 1
	}
	defer store.Close()
	go store.RunGC(ctx, 10*time.Minute)

	ix, err := index.NewIndexer(*appCfg, srcCfg, sourceKey, store, log)
	if err != nil {
		log.Errorf("Failed to initialize indexer: %v", err)
		return 1
	}

	summary, err := ix.Run(ctx)
	if err != nil {
		log.Errorf("Index run failed (%s): %v", utils.CategorizeError(err), err)
		return 1
	}
	log.Infof("Done: %d indexed, %d unchanged, %d failed, %d pruned, %d sections in %v",
		summary.DocsIndexed, summary.DocsSkipped, summary.DocsFailed, summary.DocsPruned,
		summary.SectionCount, summary.Elapsed)
	if summary.DocsFailed > 0 {
		return 2
	}
	return 0
}

// runSearch handles the search subcommand
func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to YAML config file")
	sourceKey := fs.String("source", "", "Source key from config file (required)")
	maxResults := fs.Int("max", 10, "Maximum number of results")
	logLevel := fs.String("loglevel", "warn", "Log level")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: doc-splitter search [options] <query>")
		os.Exit(1)
	}

	os.Exit(doSearch(*configFile, *sourceKey, fs.Arg(0), *maxResults, *logLevel, os.Stdout, os.Stderr))
}

// doSearch is the testable implementation of the search subcommand.
func doSearch(configPath, sourceKey, query string, maxResults int, logLevel string, stdout, stderr io.Writer) int {
	log, err := newLogger(logLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	appCfg, err := loadConfig(configPath, false, log)
	if err != nil {
		log.Errorf("Config error: %v", err)
		return 1
	}
	if sourceKey == "" {
		log.Error("-source flag is required")
		return 1
	}
	if _, ok := appCfg.Sources[sourceKey]; !ok {
		log.Errorf("Source key '%s' not found in config file '%s'", sourceKey, configPath)
		return 1
	}

	store, err := storage.NewBadgerStore(appCfg.StateDir, sourceKey, false, log.WithField("source", sourceKey))
	if err != nil {
		log.Errorf("Failed to open section store: %v", err)
		return 1
	}
	defer store.Close()

	results, err := store.Search(query, maxResults)
	if err != nil {
		log.Errorf("Search failed: %v", err)
		return 1
	}
	if len(results) == 0 {
		fmt.Fprintln(stdout, "No matches.")
		return 0
	}
	for _, r := range results {
		path := "(preamble)"
		if len(r.HeadingPath) > 0 {
			path = joinPath(r.HeadingPath)
		}
		fmt.Fprintf(stdout, "%s:%d  %s\n", r.DocPath, r.Line, path)
		if r.Snippet != "" {
			fmt.Fprintf(stdout, "    %s\n", r.Snippet)
		}
	}
	return 0
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += " > "
		}
		out += p
	}
	return out
}

// runValidate handles the validate subcommand
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to YAML config file")
	fs.Parse(args)

	os.Exit(doValidate(*configFile, os.Stdout, os.Stderr))
}

// doValidate is the testable implementation of the validate subcommand.
func doValidate(configPath string, stdout, stderr io.Writer) int {
	log, _ := newLogger("warn", stderr)
	appCfg, err := loadConfig(configPath, false, log)
	if err != nil {
		fmt.Fprintf(stderr, "Config invalid: %v\n", err)
		return 1
	}
	for key, srcCfg := range appCfg.Sources {
		if warnings, err := srcCfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "Source '%s' invalid: %v\n", key, err)
			return 1
		} else {
			for _, w := range warnings {
				fmt.Fprintf(stderr, "Source '%s': %s\n", key, w)
			}
		}
	}
	fmt.Fprintf(stdout, "Config OK: %d source(s)\n", len(appCfg.Sources))
	return 0
}

// runListSources handles the list-sources subcommand
func runListSources(args []string) {
	fs := flag.NewFlagSet("list-sources", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to YAML config file")
	fs.Parse(args)

	os.Exit(doListSources(*configFile, os.Stdout, os.Stderr))
}

// doListSources is the testable implementation of the list-sources subcommand.
func doListSources(configPath string, stdout, stderr io.Writer) int {
	log, _ := newLogger("warn", stderr)
	appCfg, err := loadConfig(configPath, false, log)
	if err != nil {
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return 1
	}

	keys := make([]string, 0, len(appCfg.Sources))
	for k := range appCfg.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		srcCfg := appCfg.Sources[key]
		fmt.Fprintf(stdout, "%-20s %s\n", key, srcCfg.Dir)
	}
	return 0
}
