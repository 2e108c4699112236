package mcp

import (
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-splitter/pkg/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	appCfg := &config.AppConfig{
		Sources: map[string]config.SourceConfig{
			"api_docs": {Dir: t.TempDir()},
		},
	}
	_, err := appCfg.Validate()
	require.NoError(t, err)

	s, err := NewServer(&ServerConfig{
		AppConfig:  appCfg,
		ConfigPath: "config.yaml",
		Transport:  "stdio",
		Logger:     logger,
	})
	require.NoError(t, err)
	return s
}

func TestNewServer_RequiresAppConfig(t *testing.T) {
	_, err := NewServer(&ServerConfig{})
	assert.Error(t, err)
}

func TestNewServer_Defaults(t *testing.T) {
	s := testServer(t)
	assert.NotNil(t, s.mcpServer)
	assert.NotNil(t, s.jobManager)
}

func TestServerRun_UnknownTransport(t *testing.T) {
	s := testServer(t)
	s.cfg.Transport = "carrier-pigeon"
	assert.Error(t, s.Run())
}

func TestFormatJSON(t *testing.T) {
	out := formatJSON(map[string]interface{}{
		"total_headings": 2,
		"headings":       []string{"A", "A > B"},
	})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, float64(2), decoded["total_headings"])
}
