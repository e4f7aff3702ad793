package api

import (
	"fmt"
	"net/http"
	"strconv"

	"solana-launchpad/internal/stats"
	"solana-launchpad/internal/storage"
)

func (s *Server) handleStatsPlatform(w http.ResponseWriter, r *http.Request) {
	platform, err := s.stats.Platform(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, platform)
}

func (s *Server) handleStatsCreator(w http.ResponseWriter, r *http.Request) {
	creator, err := s.stats.Creator(r.Context(), r.PathValue("wallet"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, creator)
}

// handleStatsTrending returns tokens ranked by SOL volume over the
// trailing window. Query: ?limit=, ?windowMs=.
func (s *Server) handleStatsTrending(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", stats.DefaultTrendingLimit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	windowMs, err := queryInt(r, "windowMs", stats.DefaultTrendingWindowMs)
	if err != nil {
		s.respondError(w, err)
		return
	}

	trending, err := s.stats.Trending(r.Context(), s.now(), int64(windowMs), limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, trending)
}

// handleStatsNew returns the most recently launched tokens.
func (s *Server) handleStatsNew(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", stats.DefaultNewestLimit)
	if err != nil {
		s.respondError(w, err)
		return
	}

	newest, err := s.stats.Newest(r.Context(), limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, toTokenViews(newest))
}

func (s *Server) handleStatsAutomation(w http.ResponseWriter, r *http.Request) {
	automation, err := s.stats.Automation(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, automation)
}

// queryInt parses a positive integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", storage.ErrInvalidInput, name)
	}
	return parsed, nil
}
