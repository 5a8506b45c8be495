// Package pipeline implements the voice note processing stages: transcribe,
// extract, resolve, draft, apply. Stages communicate through the queue and
// the store only; each stage is idempotent so a crashed worker can be
// replayed by re-enqueuing the artifact's job.
package pipeline

import (
	"context"

	"github.com/pitchside/voicenotes/internal/config"
	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/queue"
	"github.com/pitchside/voicenotes/internal/roster"
	"github.com/pitchside/voicenotes/internal/store"
	"github.com/pitchside/voicenotes/pkg/segmenter"
)

// Transcription is the output of the external speech-to-text provider.
type Transcription struct {
	Text     string
	Segments []model.TranscriptSegment
	Language string
	Duration float64
	Model    string
}

// Transcriber converts an artifact's audio into text. Implementations fetch
// the media by artifact id from wherever ingestion parked it.
type Transcriber interface {
	Transcribe(ctx context.Context, artifactID string) (*Transcription, error)
}

// PlayerRecords is the external store of player development records that
// applied insights are written to.
type PlayerRecords interface {
	ApplyInsight(ctx context.Context, ins model.AppliedInsight) error
}

// Messenger delivers feedback text to the coach on their source channel.
type Messenger interface {
	Send(ctx context.Context, userID, text string) error
}

// Pipeline orchestrates the processing stages for one deployment.
type Pipeline struct {
	cfg         *config.Config
	store       store.Store
	queue       queue.Queue
	transcriber Transcriber
	segmenter   segmenter.Client
	directory   roster.Directory
	searcher    roster.Searcher
	records     PlayerRecords
	messenger   Messenger
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	q queue.Queue,
	tr Transcriber,
	seg segmenter.Client,
	dir roster.Directory,
	search roster.Searcher,
	records PlayerRecords,
	msgr Messenger,
) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		store:       st,
		queue:       q,
		transcriber: tr,
		segmenter:   seg,
		directory:   dir,
		searcher:    search,
		records:     records,
		messenger:   msgr,
	}
}

// RegisterStages wires the pipeline's stage handlers into a worker.
func (p *Pipeline) RegisterStages(w *queue.Worker) {
	w.Register(queue.StageTranscribe, p.Transcribe)
	w.Register(queue.StageExtract, p.Extract)
	w.Register(queue.StageResolve, p.Resolve)
	w.Register(queue.StageDraft, p.Draft)
	w.Register(queue.StageApply, p.Apply)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
