package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"helix/internal/streak"
	"helix/internal/vault"
)

const defaultHistoryLimit = 50

func listLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return defaultHistoryLimit
	}
	return limit
}

type ledgerEntryResponse struct {
	ID              string    `json:"id"`
	Delta           int64     `json:"delta"`
	Source          string    `json:"source"`
	AccuracyAtGrant *float64  `json:"accuracy_at_grant,omitempty"`
	GTOAtGrant      *float64  `json:"gto_at_grant,omitempty"`
	GatePassed      bool      `json:"gate_passed"`
	PriorTotal      int64     `json:"prior_total"`
	NewTotal        int64     `json:"new_total"`
	CallerSiloID    string    `json:"caller_silo_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

func (h *Handler) handleXPHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.vault.History(r.Context(), userID, listLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntryResponse{
			ID:              e.ID.String(),
			Delta:           e.Delta,
			Source:          e.Source.String(),
			AccuracyAtGrant: e.AccuracyAtGrant,
			GTOAtGrant:      e.GTOAtGrant,
			GatePassed:      e.GatePassed,
			PriorTotal:      e.PriorTotal,
			NewTotal:        e.NewTotal,
			CallerSiloID:    e.CallerSiloID.String(),
			Timestamp:       e.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDNA(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	profile, err := h.dna.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type streakResponse struct {
	CurrentStreak  int        `json:"current_streak"`
	LongestStreak  int        `json:"longest_streak"`
	LastActiveAt   *time.Time `json:"last_active_at,omitempty"`
	Tier           string     `json:"tier"`
	Flame          string     `json:"flame"`
	Multiplier     float64    `json:"multiplier"`
	HoursRemaining float64    `json:"hours_remaining"`
}

func toStreakResponse(state *streak.State) streakResponse {
	return streakResponse{
		CurrentStreak:  state.CurrentStreak,
		LongestStreak:  state.LongestStreak,
		LastActiveAt:   state.LastActiveAt,
		Tier:           string(state.Tier),
		Flame:          string(state.Flame),
		Multiplier:     state.Multiplier,
		HoursRemaining: state.HoursRemaining,
	}
}

func (h *Handler) handleStreak(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	state, err := h.oracle.Peek(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStreakResponse(state))
}

type alertResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Kind             string    `json:"kind"`
	PriorTotal       int64     `json:"prior_total"`
	AttemptedTotal   int64     `json:"attempted_total"`
	SourceIdentifier string    `json:"source_identifier"`
	Timestamp        time.Time `json:"timestamp"`
}

func toAlertResponses(alerts []vault.SecurityAlert) []alertResponse {
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertResponse{
			ID:               a.ID.String(),
			UserID:           a.UserID.String(),
			Kind:             string(a.Kind),
			PriorTotal:       a.PriorTotal,
			AttemptedTotal:   a.AttemptedTotal,
			SourceIdentifier: a.SourceIdentifier,
			Timestamp:        a.Timestamp,
		})
	}
	return out
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	alerts, err := h.vault.Alerts(r.Context(), &userID, listLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlertResponses(alerts))
}
