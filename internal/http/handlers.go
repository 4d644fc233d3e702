package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	period := r.URL.Query().Get("period")

	summary, err := s.svc.Summary(r.Context(), userID, period)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSummaryResponse(period, summary))
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	report, err := s.svc.Trends(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTrendsResponse(report))
}

func (s *Server) handleGoalForecast(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	forecasts, rate, err := s.svc.GoalForecast(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toForecastResponse(forecasts, rate))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	period := r.URL.Query().Get("period")

	d, err := s.svc.Dashboard(r.Context(), userID, period)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDashboardResponse(period, d))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	txns, err := s.svc.RecentTransactions(r.Context(), userID, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTransactionList(txns))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	t, err := req.toTransaction(userID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.svc.AddTransaction(r.Context(), t)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toTransactionJSON(created))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	goals, err := s.svc.Goals(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalJSON(g))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	g, err := req.toGoal(userID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.svc.CreateGoal(r.Context(), g)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toGoalJSON(created))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("goalID")

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	g, err := req.toGoal("")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	g.ID = goalID

	updated, err := s.svc.UpdateGoal(r.Context(), g)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toGoalJSON(updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("goalID")

	if err := s.svc.DeleteGoal(r.Context(), goalID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
