package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pitchside/voicenotes/internal/migrate"
	"github.com/pitchside/voicenotes/internal/model"
	"github.com/pitchside/voicenotes/internal/queue"
	"github.com/pitchside/voicenotes/internal/review"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ingestion webhook and review API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      newServeMux(e),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newServeMux wires the ingestion webhook, review API, and migration
// trigger onto one mux.
func newServeMux(e *env) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /webhook/voice-note", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SenderUserID  string               `json:"sender_user_id"`
			SourceChannel string               `json:"source_channel"`
			OrgCandidates []model.OrgCandidate `json:"org_candidates"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.SenderUserID == "" {
			writeError(w, http.StatusBadRequest, "sender_user_id is required")
			return
		}
		channel := model.SourceChannel(req.SourceChannel)
		if !channel.Valid() {
			channel = model.SourceChatAudio
		}

		artifact := &model.Artifact{
			SourceChannel: channel,
			SenderUserID:  req.SenderUserID,
			OrgCandidates: req.OrgCandidates,
			Status:        model.ArtifactReceived,
		}
		if err := e.Store.CreateArtifact(r.Context(), artifact); err != nil {
			zap.L().Error("create artifact failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not record voice note")
			return
		}
		if err := e.Queue.Enqueue(r.Context(), queue.Job{
			Stage:      queue.StageTranscribe,
			ArtifactID: artifact.ID,
		}); err != nil {
			zap.L().Error("enqueue transcribe failed",
				zap.String("artifact_id", artifact.ID),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not schedule processing")
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{
			"artifact_id": artifact.ID,
			"status":      string(artifact.Status),
		})
	})

	mux.HandleFunc("GET /review/queue", func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "limit must be an integer")
				return
			}
			limit = n
		}
		items, err := e.Review.DisambiguationQueue(r.Context(),
			r.URL.Query().Get("user_id"), r.URL.Query().Get("org_id"), limit)
		if err != nil {
			writeReviewError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"resolutions": items})
	})

	mux.HandleFunc("POST /review/resolutions/{id}/resolve", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID     string  `json:"user_id"`
			EntityID   string  `json:"entity_id"`
			EntityName string  `json:"entity_name"`
			Score      float64 `json:"score"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		err := e.Review.Resolve(r.Context(), req.UserID, r.PathValue("id"),
			req.EntityID, req.EntityName, req.Score)
		if err != nil {
			writeReviewError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
	})

	mux.HandleFunc("POST /review/resolutions/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID            string  `json:"user_id"`
			TopCandidateScore float64 `json:"top_candidate_score"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := e.Review.Reject(r.Context(), req.UserID, r.PathValue("id"), req.TopCandidateScore); err != nil {
			writeReviewError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
	})

	mux.HandleFunc("POST /review/resolutions/{id}/skip", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := e.Review.Skip(r.Context(), req.UserID, r.PathValue("id")); err != nil {
			writeReviewError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
	})

	mux.HandleFunc("GET /review/drafts", func(w http.ResponseWriter, r *http.Request) {
		drafts, err := e.Review.PendingDrafts(r.Context(),
			r.URL.Query().Get("user_id"), r.URL.Query().Get("org_id"))
		if err != nil {
			writeReviewError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
	})

	mux.HandleFunc("POST /review/drafts/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := e.Review.ConfirmDraft(r.Context(), req.UserID, r.PathValue("id")); err != nil {
			writeReviewError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
	})

	mux.HandleFunc("POST /review/drafts/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := e.Review.RejectDraft(r.Context(), req.UserID, r.PathValue("id")); err != nil {
			writeReviewError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
	})

	mux.HandleFunc("POST /review/artifacts/{id}/confirm-all", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			OrgID  string `json:"org_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		n, err := e.Review.ConfirmAll(r.Context(), req.UserID, r.PathValue("id"), req.OrgID)
		if err != nil {
			writeReviewError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"confirmed": n})
	})

	mux.HandleFunc("POST /review/artifacts/{id}/reject-all", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			OrgID  string `json:"org_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		n, err := e.Review.RejectAll(r.Context(), req.UserID, r.PathValue("id"), req.OrgID)
		if err != nil {
			writeReviewError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"rejected": n})
	})

	mux.HandleFunc("POST /migrate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OrganizationID string `json:"organization_id"`
			DryRun         bool   `json:"dry_run"`
			BatchSize      int    `json:"batch_size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		// Migration batches are bounded, so run synchronously.
		stats, err := e.Replayer.Run(r.Context(), migrate.Options{
			OrganizationID: req.OrganizationID,
			DryRun:         req.DryRun,
			BatchSize:      req.BatchSize,
		})
		if err != nil {
			zap.L().Error("migration batch failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "migration failed")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeReviewError maps review service errors onto HTTP statuses.
func writeReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, review.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, review.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, "score must be between 0 and 1")
	case errors.Is(err, review.ErrNotPending):
		writeError(w, http.StatusConflict, "draft is not pending")
	default:
		zap.L().Error("review operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
