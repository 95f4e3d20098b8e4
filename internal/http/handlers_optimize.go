package http

import (
	"context"
	"errors"
	"net/http"

	"wealthtrack/internal/core"
	"wealthtrack/internal/log"
)

type optimizeResponse struct {
	Suggestions []core.OptimizationSuggestion `json:"suggestions"`
	Added       int                           `json:"added"`
}

// handleOptimize runs the suggestion engine against the current ledger
// snapshot, merges new suggestions into the stored collection and returns
// the rotated display batch. The whole run is bounded by the configured
// timeout; an overrun answers 504.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.adviceTimeout)
	defer cancel()

	batch := s.engine.Generate(s.ledger.Snapshot())

	added, err := s.ledger.MergeSuggestions(ctx, batch)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusGatewayTimeout, "optimization timed out")
			return
		}
		s.logger.ErrorContext(ctx, "Suggestion merge failed",
			log.FieldOperation, log.OpGenerate, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to store suggestions")
		return
	}

	display := s.engine.Rotate(s.ledger.Suggestions())
	ids := make([]string, 0, len(display))
	for _, sug := range display {
		ids = append(ids, sug.ID)
	}
	s.engine.MarkShown(ids...)

	if display == nil {
		display = []core.OptimizationSuggestion{}
	}
	writeJSON(w, http.StatusOK, optimizeResponse{Suggestions: display, Added: added})
}
