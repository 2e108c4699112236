package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-splitter/pkg/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func writeTestConfig(t *testing.T, dir, content string) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath
}

func TestLoadConfig_ValidFile(t *testing.T) {
	content := `
num_workers: 2
state_dir: "./state"
sources:
  docs:
    dir: "./docs"
`
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, content)

	cfg, err := loadConfig(cfgPath, false, testLogger())

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.NumWorkers)
	assert.Contains(t, cfg.Sources, "docs")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := loadConfig("/nonexistent/path/config.yaml", false, testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_MissingAllowed(t *testing.T) {
	cfg, err := loadConfig("/nonexistent/path/config.yaml", true, testLogger())

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.NumWorkers) // Defaults applied
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0644))

	_, err := loadConfig(cfgPath, false, testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestDoSplit_JSON(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "doc.md")
	require.NoError(t, os.WriteFile(docPath, []byte("# Title\nbody\n## Sub\nmore\n"), 0644))

	var stdout, stderr bytes.Buffer
	exitCode := doSplit(docPath, filepath.Join(tmpDir, "none.yaml"), "json", 0, "", "", "error", &stdout, &stderr)

	require.Equal(t, 0, exitCode)

	var root models.Section
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &root))
	assert.Equal(t, 0, root.Level)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Title", root.Children[0].Heading)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "Sub", root.Children[0].Children[0].Heading)
}

func TestDoSplit_Outline(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "doc.md")
	require.NoError(t, os.WriteFile(docPath, []byte("# Alpha\n## Beta\n"), 0644))

	var stdout, stderr bytes.Buffer
	exitCode := doSplit(docPath, filepath.Join(tmpDir, "none.yaml"), "outline", 0, "", "", "error", &stdout, &stderr)

	require.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "Alpha")
	assert.Contains(t, stdout.String(), "Beta")
}

func TestDoSplit_OutlineFile(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "doc.md")
	require.NoError(t, os.WriteFile(docPath, []byte("# Alpha\n## Beta\n"), 0644))
	outPath := filepath.Join(tmpDir, "outline.txt")

	var stdout, stderr bytes.Buffer
	exitCode := doSplit(docPath, filepath.Join(tmpDir, "none.yaml"), "json", 0, "", outPath, "error", &stdout, &stderr)

	require.Equal(t, 0, exitCode)
	saved, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "Alpha")
	assert.Contains(t, string(saved), "Beta")
}

func TestDoSplit_FileNotFound(t *testing.T) {
	tmpDir := t.TempDir()

	var stdout, stderr bytes.Buffer
	exitCode := doSplit(filepath.Join(tmpDir, "missing.md"), filepath.Join(tmpDir, "none.yaml"), "json", 0, "", "", "error", &stdout, &stderr)

	assert.Equal(t, 1, exitCode)
}

func TestDoSplit_UnknownFormat(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "doc.md")
	require.NoError(t, os.WriteFile(docPath, []byte("# Title\n"), 0644))

	var stdout, stderr bytes.Buffer
	exitCode := doSplit(docPath, filepath.Join(tmpDir, "none.yaml"), "xml", 0, "", "", "error", &stdout, &stderr)

	assert.Equal(t, 1, exitCode)
}

func TestDoTOC(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "doc.md")
	require.NoError(t, os.WriteFile(docPath, []byte("# Guide\n## Install\n## Usage\n### Flags\n"), 0644))

	var stdout, stderr bytes.Buffer
	exitCode := doTOC(docPath, filepath.Join(tmpDir, "none.yaml"), " > ", "", "error", &stdout, &stderr)

	require.Equal(t, 0, exitCode)
	out := stdout.String()
	assert.Contains(t, out, "Guide > Install")
	assert.Contains(t, out, "Guide > Usage > Flags")
}

func TestDoChunk(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "doc.md")
	require.NoError(t, os.WriteFile(docPath, []byte("# Title\nsome body text\n"), 0644))

	var stdout, stderr bytes.Buffer
	exitCode := doChunk(docPath, filepath.Join(tmpDir, "none.yaml"), 256, 0, "", "", "error", &stdout, &stderr)

	require.Equal(t, 0, exitCode)

	var chunks []map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &chunks))
	require.NotEmpty(t, chunks)
	assert.Contains(t, chunks[0]["content"], "some body text")
}

func TestDoIndexAndSearch(t *testing.T) {
	tmpDir := t.TempDir()
	docsDir := filepath.Join(tmpDir, "docs")
	require.NoError(t, os.MkdirAll(docsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "guide.md"),
		[]byte("# Guide\n## Install\nRun the installer binary.\n"), 0644))

	content := `
state_dir: "` + filepath.Join(tmpDir, "state") + `"
sources:
  docs:
    dir: "` + docsDir + `"
`
	cfgPath := writeTestConfig(t, tmpDir, content)

	var stderr bytes.Buffer
	exitCode := doIndex(cfgPath, "docs", false, "error", &stderr)
	require.Equal(t, 0, exitCode, "index failed: %s", stderr.String())

	var stdout bytes.Buffer
	stderr.Reset()
	exitCode = doSearch(cfgPath, "docs", "installer", 10, "error", &stdout, &stderr)
	require.Equal(t, 0, exitCode, "search failed: %s", stderr.String())
	assert.Contains(t, stdout.String(), "Guide > Install")
}

func TestDoIndex_UnknownSource(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, `
sources:
  docs:
    dir: "`+tmpDir+`"
`)

	var stderr bytes.Buffer
	exitCode := doIndex(cfgPath, "nope", false, "error", &stderr)

	assert.Equal(t, 1, exitCode)
}

func TestDoIndex_MissingSourceFlag(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, `
sources:
  docs:
    dir: "`+tmpDir+`"
`)

	var stderr bytes.Buffer
	exitCode := doIndex(cfgPath, "", false, "error", &stderr)

	assert.Equal(t, 1, exitCode)
}

func TestDoValidate_OK(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, `
sources:
  a:
    dir: "./a"
  b:
    dir: "./b"
`)

	var stdout, stderr bytes.Buffer
	exitCode := doValidate(cfgPath, &stdout, &stderr)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "Config OK: 2 source(s)")
}

func TestDoValidate_InvalidSource(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, `
sources:
  bad:
    include_extensions: [".md"]
`)

	var stdout, stderr bytes.Buffer
	exitCode := doValidate(cfgPath, &stdout, &stderr)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "bad")
}

func TestDoListSources(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeTestConfig(t, tmpDir, `
sources:
  zeta:
    dir: "./z"
  alpha:
    dir: "./a"
`)

	var stdout, stderr bytes.Buffer
	exitCode := doListSources(cfgPath, &stdout, &stderr)

	require.Equal(t, 0, exitCode)
	out := stdout.String()
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "zeta")
	assert.Less(t, bytes.Index(stdout.Bytes(), []byte("alpha")), bytes.Index(stdout.Bytes(), []byte("zeta")))
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsageTo(&buf)

	assert.Contains(t, buf.String(), "split")
	assert.Contains(t, buf.String(), "mcp-server")
}
