package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/observability"
	"solana-launchpad/internal/storage"
	"solana-launchpad/internal/stream"
)

const defaultJobListLimit = 100

// triggerRequest identifies the token by id or mint and names the job
// type to enqueue.
type triggerRequest struct {
	TokenID   string `json:"tokenId,omitempty"`
	TokenMint string `json:"tokenMint,omitempty"`
	JobType   string `json:"jobType"`
}

// handleTrigger enqueues one manually requested job.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if !domain.ValidJobType(req.JobType) {
		s.respondError(w, fmt.Errorf("%w: unknown job type %q", storage.ErrInvalidInput, req.JobType))
		return
	}

	tokenID := req.TokenID
	if tokenID == "" {
		if req.TokenMint == "" {
			s.respondError(w, fmt.Errorf("%w: tokenId or tokenMint is required", storage.ErrInvalidInput))
			return
		}
		token, err := s.tokens.GetByMint(r.Context(), req.TokenMint)
		if err != nil {
			s.respondError(w, err)
			return
		}
		tokenID = token.TokenID
	}

	job, err := s.scheduler.EnqueueJob(r.Context(), tokenID, domain.JobType(req.JobType), domain.TriggerManual)
	if err != nil {
		s.respondError(w, err)
		return
	}

	observability.RecordJobEnqueued(string(job.JobType), string(domain.TriggerManual))
	s.respondStatus(w, http.StatusAccepted, toJobView(job))
}

// handleRunAll starts a full automation cycle in the background and
// returns immediately.
func (s *Server) handleRunAll(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx := context.Background()
		start := time.Now()
		result, err := s.scheduler.RunCycle(ctx, domain.TriggerManual)
		if err != nil {
			log.Error().Err(err).Msg("automation cycle failed")
			return
		}
		observability.RecordCycle("automation", time.Since(start).Seconds())
		log.Info().
			Int("enqueued", result.Enqueued).
			Int("executed", result.Executed).
			Int("failed", result.Failed).
			Int("skipped", result.Skipped).
			Msg("automation cycle finished")
	}()

	s.respondStatus(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// handleGraduationsCheck starts a graduation sweep in the background and
// returns immediately.
func (s *Server) handleGraduationsCheck(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx := context.Background()
		start := time.Now()
		result, err := s.monitor.RunCycle(ctx)
		if err != nil {
			log.Error().Err(err).Msg("graduation cycle failed")
			return
		}
		observability.RecordCycle("graduation", time.Since(start).Seconds())
		for _, tokenID := range result.Graduated {
			observability.RecordTokenGraduated()
			if s.hub != nil {
				s.hub.Publish(stream.EventTokenGraduated, map[string]string{"tokenId": tokenID})
			}
		}
		log.Info().
			Int("checked", result.Checked).
			Int("graduated", len(result.Graduated)).
			Msg("graduation cycle finished")
	}()

	s.respondStatus(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleJobsPending(w http.ResponseWriter, r *http.Request) {
	s.listJobs(w, r, domain.JobStatusPending)
}

func (s *Server) handleJobsFailed(w http.ResponseWriter, r *http.Request) {
	s.listJobs(w, r, domain.JobStatusFailed)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request, status domain.JobStatus) {
	limit := defaultJobListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.respondError(w, fmt.Errorf("%w: limit must be a positive integer", storage.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	jobs, err := s.jobs.GetByStatus(r.Context(), status, limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, toJobViews(jobs))
}

// handleRetryJob resets a FAILED job to PENDING and re-triggers its
// execution in the background. 404 for unknown jobs, 400 for jobs in any
// other state.
func (s *Server) handleRetryJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.scheduler.Retry(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	go func() {
		if err := s.scheduler.Execute(context.Background(), job); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("retried job execution failed")
		}
	}()

	s.respond(w, toJobView(job))
}

// healthView reports store reachability and headline counts.
type healthView struct {
	Status string         `json:"status"`
	Tokens int            `json:"tokens"`
	Jobs   map[string]int `json:"jobs"`
}

// handleHealth probes the stores; any read failure reports 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.tokens.GetAll(r.Context())
	if err != nil {
		s.respondErrorStatus(w, http.StatusServiceUnavailable, fmt.Errorf("token store: %w", err))
		return
	}
	counts, err := s.jobs.CountByStatus(r.Context())
	if err != nil {
		s.respondErrorStatus(w, http.StatusServiceUnavailable, fmt.Errorf("job store: %w", err))
		return
	}

	jobs := make(map[string]int, len(counts))
	for status, n := range counts {
		jobs[string(status)] = n
	}
	s.respond(w, healthView{Status: "ok", Tokens: len(tokens), Jobs: jobs})
}
