package agora

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) HandleHealth() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		res.Header().Set("Content-Type", "application/json")
		res.Write([]byte(`{"status":"ok"}`))
	}
}

// HandleScoreChange receives a score-change event from the ingestion
// pipeline and recomputes the item's rank.
func (s *Server) HandleScoreChange() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var ev ScoreChangeEvent
		if err := json.NewDecoder(req.Body).Decode(&ev); err != nil || ev.ItemID == "" {
			http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err := s.maintainer.OnScoreChange(req.Context(), ev.ItemID); err != nil {
			s.Logger.Error().Err(err).Str("item_id", ev.ItemID).Msg("Score change recompute failed")
			http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		res.WriteHeader(http.StatusAccepted)
	}
}

// HandleInteraction receives an interaction event, refreshes the group's
// monthly volume and recomputes the ranks that depend on it.
func (s *Server) HandleInteraction() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var ev InteractionEvent
		if err := json.NewDecoder(req.Body).Decode(&ev); err != nil || ev.GroupID == "" {
			http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err := s.refresher.RefreshGroup(req.Context(), ev.GroupID); err != nil {
			// Stale-but-valid: the group keeps its last volume and the next
			// tracker pass catches up.
			s.Logger.Warn().Err(err).Str("group_id", ev.GroupID).Msg("Group refresh failed, keeping last value")
			res.WriteHeader(http.StatusAccepted)
			return
		}

		if err := s.maintainer.OnGroupActivityChange(req.Context(), ev.GroupID); err != nil {
			s.Logger.Error().Err(err).Str("group_id", ev.GroupID).Msg("Group rank recompute failed")
			http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		res.WriteHeader(http.StatusAccepted)
	}
}

type retirementResponse struct {
	Retired     SortPreference  `json:"retired"`
	Replacement SortPreference  `json:"replacement"`
	Status      MigrationStatus `json:"status"`
}

// HandleRetirementStatus reports where a declared retirement stands.
func (s *Server) HandleRetirementStatus() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		m, ok := s.migrators[SortPreference(params.ByName("value"))]
		if !ok {
			http.Error(res, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		res.Header().Set("Content-Type", "application/json")
		json.NewEncoder(res).Encode(retirementResponse{
			Retired:     m.Retirement().Retired,
			Replacement: m.Retirement().Replacement,
			Status:      m.Status(),
		})
	}
}

// HandleRetirementApply runs a declared retirement to completion. Idempotent
// and safe to retry: a partial rewrite answers 503 and the next call picks
// up the remaining rows.
func (s *Server) HandleRetirementApply() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		m, ok := s.migrators[SortPreference(params.ByName("value"))]
		if !ok {
			http.Error(res, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		if err := m.ApplyRetirement(req.Context()); err != nil {
			s.Logger.Error().Err(err).Str("retired", string(m.Retirement().Retired)).Msg("Retirement incomplete")

			var partial *PartialRewriteError
			if errors.As(err, &partial) {
				http.Error(res, "retirement incomplete, retry", http.StatusServiceUnavailable)
				return
			}
			http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		res.Header().Set("Content-Type", "application/json")
		json.NewEncoder(res).Encode(retirementResponse{
			Retired:     m.Retirement().Retired,
			Replacement: m.Retirement().Replacement,
			Status:      m.Status(),
		})
	}
}
