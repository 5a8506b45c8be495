// Package queue provides fire-and-forget stage scheduling for the voice note
// pipeline. Stages hand work to each other through jobs on a shared list; a
// lost job is recovered by re-enqueuing the artifact, never by retrying
// in-process.
package queue

import "context"

// Stage names one pipeline stage a job can be scheduled for.
type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageExtract    Stage = "extract"
	StageResolve    Stage = "resolve"
	StageDraft      Stage = "draft"
	StageApply      Stage = "apply"
)

// Job is one unit of scheduled pipeline work. DraftID is set only for apply
// jobs, which operate per draft rather than per artifact.
type Job struct {
	Stage      Stage  `json:"stage"`
	ArtifactID string `json:"artifact_id"`
	DraftID    string `json:"draft_id,omitempty"`
}

// Queue schedules pipeline jobs.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks briefly for the next job. A nil job with nil error
	// means nothing was available; callers loop.
	Dequeue(ctx context.Context) (*Job, error)
	Close() error
}
