package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"doc-splitter/pkg/config"
	"doc-splitter/pkg/index"
	"doc-splitter/pkg/models"
	"doc-splitter/pkg/process"
	"doc-splitter/pkg/splitter"
	"doc-splitter/pkg/storage"
)

// handleSplitMarkdown handles the split_markdown tool
func (s *Server) handleSplitMarkdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown := request.GetString("markdown", "")
	maxLevel := request.GetInt("max_split_level", s.cfg.AppConfig.MaxSplitLevel)

	root := splitter.Split(markdown, splitter.Options{MaxSplitLevel: maxLevel})

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize section tree: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleGetTOC handles the get_toc tool
func (s *Server) handleGetTOC(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown := request.GetString("markdown", "")
	separator := request.GetString("separator", " > ")

	root := splitter.Split(markdown, splitter.Options{MaxSplitLevel: s.cfg.AppConfig.MaxSplitLevel})
	paths := splitter.HeadingPaths(root, separator)

	result := map[string]interface{}{
		"headings":       paths,
		"total_headings": len(paths),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleChunkMarkdown handles the chunk_markdown tool
func (s *Server) handleChunkMarkdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown := request.GetString("markdown", "")
	cfg := process.ChunkerConfig{
		MaxChunkTokens: request.GetInt("max_tokens", s.cfg.AppConfig.MaxChunkTokens),
		ChunkOverlap:   request.GetInt("overlap", s.cfg.AppConfig.ChunkOverlap),
	}

	root := splitter.Split(markdown, splitter.Options{MaxSplitLevel: s.cfg.AppConfig.MaxSplitLevel})
	chunks, err := process.ChunkSections(root, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chunking failed: %v", err)), nil
	}

	out := make([]map[string]interface{}, 0, len(chunks))
	for _, chunk := range chunks {
		out = append(out, map[string]interface{}{
			"content":      chunk.Content,
			"heading_path": chunk.HeadingPath,
			"token_count":  chunk.TokenCount,
		})
	}
	result := map[string]interface{}{
		"chunks":       out,
		"total_chunks": len(out),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleListSources handles the list_sources tool
func (s *Server) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys := make([]string, 0, len(s.cfg.AppConfig.Sources))
	for k := range s.cfg.AppConfig.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sources := make([]map[string]interface{}, 0, len(keys))
	for _, key := range keys {
		srcCfg := s.cfg.AppConfig.Sources[key]
		sourceInfo := map[string]interface{}{
			"key": key,
			"dir": srcCfg.Dir,
		}
		if srcCfg.ContentSelector != "" {
			sourceInfo["content_selector"] = srcCfg.ContentSelector
		}
		if s.jobManager.IsRunning(key) {
			sourceInfo["status"] = "indexing"
		}
		sources = append(sources, sourceInfo)
	}

	result := map[string]interface{}{
		"sources":       sources,
		"config_path":   s.cfg.ConfigPath,
		"total_sources": len(sources),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleIndexSource handles the index_source tool
func (s *Server) handleIndexSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceKey := request.GetString("source_key", "")
	if sourceKey == "" {
		return mcp.NewToolResultError("source_key parameter is required"), nil
	}
	srcCfg, exists := s.cfg.AppConfig.Sources[sourceKey]
	if !exists {
		return mcp.NewToolResultError(fmt.Sprintf("source '%s' not found in config", sourceKey)), nil
	}
	wipe := request.GetBool("wipe", false)

	job, created := s.jobManager.CreateJob(sourceKey, wipe)
	if !created {
		// An index run is already active for this source; report the
		// existing job instead of starting a second one.
		snap, _ := s.jobManager.Snapshot(job.ID)
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"job_id":  job.ID,
			"status":  string(snap.Status),
			"message": "an index job is already active for this source",
		})), nil
	}

	go s.runIndexJob(job, sourceKey, srcCfg, wipe)

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"job_id":     job.ID,
		"source_key": sourceKey,
		"status":     string(JobStatusPending),
		"message":    "index job started; poll get_job_status with the job_id",
	})), nil
}

// runIndexJob executes one background index run for a job.
func (s *Server) runIndexJob(job *Job, sourceKey string, srcCfg config.SourceConfig, wipe bool) {
	jobLog := s.cfg.Logger.WithFields(logrus.Fields{"job": job.ID, "source": sourceKey})
	s.jobManager.SetStatus(job.ID, JobStatusRunning)

	store, err := storage.NewBadgerStore(s.cfg.AppConfig.StateDir, sourceKey, wipe, jobLog)
	if err != nil {
		jobLog.Errorf("Failed to open section store: %v", err)
		s.jobManager.Fail(job.ID, err.Error())
		return
	}
	defer store.Close()

	ix, err := index.NewIndexer(*s.cfg.AppConfig, srcCfg, sourceKey, store, s.cfg.Logger)
	if err != nil {
		s.jobManager.Fail(job.ID, err.Error())
		return
	}
	ix.OnDocDone = func(_ models.DocStatus) {
		s.jobManager.AddDocsProcessed(job.ID, 1)
	}

	summary, err := ix.Run(job.ctx)
	if err != nil {
		if job.ctx.Err() != nil {
			s.jobManager.SetStatus(job.ID, JobStatusCancelled)
			return
		}
		s.jobManager.Fail(job.ID, err.Error())
		return
	}
	s.jobManager.Complete(job.ID, summary)
}

// handleGetJobStatus handles the get_job_status tool
func (s *Server) handleGetJobStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := request.GetString("job_id", "")
	if jobID == "" {
		return mcp.NewToolResultError("job_id parameter is required"), nil
	}

	snapshot, ok := s.jobManager.Snapshot(jobID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' not found", jobID)), nil
	}

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize job: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleSearchSections handles the search_sections tool
func (s *Server) handleSearchSections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	sourceKey := request.GetString("source_key", "")
	if sourceKey == "" {
		return mcp.NewToolResultError("source_key parameter is required"), nil
	}
	if _, exists := s.cfg.AppConfig.Sources[sourceKey]; !exists {
		return mcp.NewToolResultError(fmt.Sprintf("source '%s' not found in config", sourceKey)), nil
	}
	if s.jobManager.IsRunning(sourceKey) {
		return mcp.NewToolResultError(fmt.Sprintf("source '%s' is being indexed right now, try again shortly", sourceKey)), nil
	}

	maxResults := request.GetInt("max_results", 10)
	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	store, err := storage.NewBadgerStore(s.cfg.AppConfig.StateDir, sourceKey, false, s.log)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open section store: %v", err)), nil
	}
	defer store.Close()

	results, err := store.Search(query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"query":         query,
		"source_key":    sourceKey,
		"results":       results,
		"total_matches": len(results),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// formatJSON renders a result map as indented JSON for tool output.
func formatJSON(data map[string]interface{}) string {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": \"failed to format response: %v\"}", err)
	}
	return string(out)
}
