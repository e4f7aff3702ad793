package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"solana-launchpad/internal/curve"
	"solana-launchpad/internal/provider"
	"solana-launchpad/internal/solana"
	"solana-launchpad/internal/staking"
	"solana-launchpad/internal/storage"
	"solana-launchpad/internal/tax"
)

// envelope is the wire shape of every JSON response.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, env envelope) {
	env.Timestamp = s.now()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// respond writes a 200 success envelope.
func (s *Server) respond(w http.ResponseWriter, data any) {
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// respondStatus writes a success envelope with an explicit status.
func (s *Server) respondStatus(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondError maps the error to an HTTP status and writes a failure
// envelope with the error's message.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusForError(err), envelope{Success: false, Error: err.Error()})
}

// respondErrorStatus writes a failure envelope with an explicit status.
func (s *Server) respondErrorStatus(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, envelope{Success: false, Error: err.Error()})
}

// statusForError maps engine errors onto the HTTP taxonomy: validation
// and state conflicts are 400, missing records 404, enqueue races 409,
// provider failures 502.
func statusForError(err error) int {
	var provErr *provider.Error

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrJobConflict),
		errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, storage.ErrStateConflict),
		errors.Is(err, curve.ErrInvalidCurveParams),
		errors.Is(err, curve.ErrInvalidAmount),
		errors.Is(err, curve.ErrInsufficientLiquidity),
		errors.Is(err, tax.ErrInvalidConfig),
		errors.Is(err, solana.ErrInvalidAddress),
		errors.Is(err, staking.ErrLockTooShort),
		errors.Is(err, staking.ErrLockTooLong):
		return http.StatusBadRequest
	case errors.As(err, &provErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// decodeJSON decodes a request body, turning malformed JSON into a
// storage.ErrInvalidInput so it maps to 400.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", storage.ErrInvalidInput, err)
	}
	return nil
}
