package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/migrate"
	"github.com/pitchside/voicenotes/internal/pipeline"
	"github.com/pitchside/voicenotes/internal/platform"
	"github.com/pitchside/voicenotes/internal/queue"
	"github.com/pitchside/voicenotes/internal/review"
	"github.com/pitchside/voicenotes/internal/roster"
	"github.com/pitchside/voicenotes/internal/store"
	platformapi "github.com/pitchside/voicenotes/pkg/platform"
	"github.com/pitchside/voicenotes/pkg/segmenter"
	"github.com/pitchside/voicenotes/pkg/whisper"
)

// env holds the initialized store, queue, and services shared by the serve,
// worker, and migrate commands.
type env struct {
	Store    store.Store
	Queue    queue.Queue
	Pipeline *pipeline.Pipeline
	Review   *review.Service
	Replayer *migrate.Replayer
}

// Close releases resources. Safe on a partially initialized env.
func (e *env) Close() {
	if e.Queue != nil {
		_ = e.Queue.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres", "":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv sets up the store, queue, external clients, and services. Callers
// should defer env.Close().
func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	q, err := queue.NewRedis(cfg.Queue.RedisURL, cfg.Queue.Key)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	club := platformapi.NewClient(cfg.Platform.BaseURL, cfg.Platform.Key)
	speech := whisper.NewClient(cfg.Transcribe.Key,
		whisper.WithBaseURL(cfg.Transcribe.BaseURL),
		whisper.WithModel(cfg.Transcribe.Model))

	temp := cfg.Anthropic.Temperature
	seg := segmenter.NewAnthropicClient(cfg.Anthropic.Key, segmenter.Options{
		Model:       cfg.Anthropic.Model,
		MaxTokens:   int64(cfg.Anthropic.MaxTokens),
		Temperature: &temp,
	})

	dir := platform.NewDirectory(club)
	p := pipeline.New(
		cfg,
		st,
		q,
		platform.NewTranscriber(club, speech, cfg.Transcribe.Model),
		seg,
		dir,
		roster.NewDirectorySearch(dir),
		platform.NewRecords(club),
		platform.NewMessenger(club),
	)

	zap.L().Info("environment initialized",
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("queue_key", cfg.Queue.Key))

	return &env{
		Store:    st,
		Queue:    q,
		Pipeline: p,
		Review:   review.NewService(cfg, st, q),
		Replayer: migrate.NewReplayer(cfg, st),
	}, nil
}
