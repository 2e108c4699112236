package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"doc-splitter/pkg/models"
)

// JobStatus represents the current state of an indexing job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job represents a background indexing job
type Job struct {
	ID            string               `json:"id"`
	SourceKey     string               `json:"source_key"`
	Status        JobStatus            `json:"status"`
	StartedAt     time.Time            `json:"started_at"`
	CompletedAt   time.Time            `json:"completed_at,omitempty"`
	DocsProcessed int64                `json:"docs_processed"`
	Summary       *models.IndexSummary `json:"summary,omitempty"`
	ErrorMessage  string               `json:"error_message,omitempty"`
	Wipe          bool                 `json:"wipe"`

	// Internal fields
	ctx    context.Context
	cancel context.CancelFunc
}

// JobManager manages background indexing jobs
type JobManager struct {
	jobs     map[string]*Job
	mu       sync.RWMutex
	bysource map[string]string // sourceKey -> jobID for running jobs
}

// NewJobManager creates a new job manager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:     make(map[string]*Job),
		bysource: make(map[string]string),
	}
}

// CreateJob creates a new job for a source. If a job is already pending or
// running for the source, that job is returned with created=false; the
// check and the insert happen under one lock so two concurrent calls can
// never both be told to start a run.
func (m *JobManager) CreateJob(sourceKey string, wipe bool) (job *Job, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existingJobID, exists := m.bysource[sourceKey]; exists {
		existingJob := m.jobs[existingJobID]
		if existingJob != nil && (existingJob.Status == JobStatusPending || existingJob.Status == JobStatusRunning) {
			return existingJob, false
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	job = &Job{
		ID:        uuid.New().String(),
		SourceKey: sourceKey,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
		Wipe:      wipe,
		ctx:       ctx,
		cancel:    cancel,
	}

	m.jobs[job.ID] = job
	m.bysource[sourceKey] = job.ID
	return job, true
}

// GetJob returns the job with the given ID, or nil.
func (m *JobManager) GetJob(jobID string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[jobID]
}

// IsRunning reports whether a job is pending or running for the source.
func (m *JobManager) IsRunning(sourceKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobID, exists := m.bysource[sourceKey]
	if !exists {
		return false
	}
	job := m.jobs[jobID]
	return job != nil && (job.Status == JobStatusPending || job.Status == JobStatusRunning)
}

// SetStatus transitions a job to the given status.
func (m *JobManager) SetStatus(jobID string, status JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job := m.jobs[jobID]; job != nil {
		job.Status = status
		if status == JobStatusCompleted || status == JobStatusFailed || status == JobStatusCancelled {
			job.CompletedAt = time.Now()
		}
	}
}

// Complete marks a job as finished with its summary.
func (m *JobManager) Complete(jobID string, summary models.IndexSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job := m.jobs[jobID]; job != nil {
		job.Status = JobStatusCompleted
		job.Summary = &summary
		job.CompletedAt = time.Now()
	}
}

// Fail marks a job as failed with an error message.
func (m *JobManager) Fail(jobID string, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job := m.jobs[jobID]; job != nil {
		job.Status = JobStatusFailed
		job.ErrorMessage = errMsg
		job.CompletedAt = time.Now()
	}
}

// AddDocsProcessed increments a job's processed counter.
func (m *JobManager) AddDocsProcessed(jobID string, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job := m.jobs[jobID]; job != nil {
		job.DocsProcessed += n
	}
}

// Snapshot returns a copy of the job safe to serialize.
func (m *JobManager) Snapshot(jobID string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job := m.jobs[jobID]
	if job == nil {
		return Job{}, false
	}
	return *job, true
}

// CancelAll cancels every pending or running job.
func (m *JobManager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.Status == JobStatusPending || job.Status == JobStatusRunning {
			job.cancel()
			job.Status = JobStatusCancelled
			job.CompletedAt = time.Now()
		}
	}
}
