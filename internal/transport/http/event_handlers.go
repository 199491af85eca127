package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"helix/internal/coordinator"
	"helix/internal/vault"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
)

type drillRequest struct {
	UserID        id.UserID  `json:"user_id"`
	DrillID       id.DrillID `json:"drill_id"`
	Accuracy      float64    `json:"accuracy"`
	GTOCompliance float64    `json:"gto_compliance"`
	XPAmount      int64      `json:"xp_amount"`
}

type drillResponse struct {
	Granted       bool     `json:"granted"`
	NewTotal      int64    `json:"new_total"`
	GateScore     *float64 `json:"gate_score,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	StreakAction  string   `json:"streak_action"`
	CurrentStreak int      `json:"current_streak"`
	Multiplier    float64  `json:"multiplier"`
	Composite     float64  `json:"composite"`
}

func (h *Handler) handleDrillCompletion(w http.ResponseWriter, r *http.Request) {
	var req drillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.UserID.IsNil() || req.DrillID.IsNil() {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "user_id and drill_id are required"))
		return
	}

	outcome, err := submit(r.Context(), h.pool, req.UserID, func(ctx context.Context) (*coordinator.DrillOutcome, error) {
		return h.coordinator.OnDrillCompletion(ctx, coordinator.DrillCompletion{
			UserID:        req.UserID,
			DrillID:       req.DrillID,
			Accuracy:      req.Accuracy,
			GTOCompliance: req.GTOCompliance,
			XPAmount:      req.XPAmount,
		})
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drillResponse{
		Granted:       outcome.Granted,
		NewTotal:      outcome.NewTotal,
		GateScore:     outcome.GateScore,
		Reason:        outcome.Reason,
		StreakAction:  outcome.StreakAction,
		CurrentStreak: outcome.CurrentStreak,
		Multiplier:    outcome.Multiplier,
		Composite:     outcome.Composite,
	})
}

type arcadeRequest struct {
	UserID         id.UserID `json:"user_id"`
	BaseAggression float64   `json:"base_aggression"`
	SpeedScore     float64   `json:"speed_score"`
	XPAmount       int64     `json:"xp_amount"`
}

func (h *Handler) handleArcadeResult(w http.ResponseWriter, r *http.Request) {
	var req arcadeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.UserID.IsNil() {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "user_id is required"))
		return
	}
	_, err := submit(r.Context(), h.pool, req.UserID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.coordinator.OnArcadeResult(ctx, coordinator.ArcadeResult{
			UserID:         req.UserID,
			BaseAggression: req.BaseAggression,
			SpeedScore:     req.SpeedScore,
			XPAmount:       req.XPAmount,
		})
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type bankrollRequest struct {
	UserID id.UserID `json:"user_id"`
	Wealth float64   `json:"wealth"`
}

func (h *Handler) handleBankrollUpdate(w http.ResponseWriter, r *http.Request) {
	var req bankrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.UserID.IsNil() {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "user_id is required"))
		return
	}
	_, err := submit(r.Context(), h.pool, req.UserID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.coordinator.OnBankrollUpdate(ctx, coordinator.BankrollUpdate{
			UserID: req.UserID,
			Wealth: req.Wealth,
		})
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type reputationRequest struct {
	UserID id.UserID `json:"user_id"`
	Luck   float64   `json:"luck"`
}

func (h *Handler) handleReputationUpdate(w http.ResponseWriter, r *http.Request) {
	var req reputationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.UserID.IsNil() {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "user_id is required"))
		return
	}
	_, err := submit(r.Context(), h.pool, req.UserID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.coordinator.OnReputationUpdate(ctx, coordinator.ReputationUpdate{
			UserID: req.UserID,
			Luck:   req.Luck,
		})
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type grantRequest struct {
	UserID id.UserID `json:"user_id"`
	Amount int64     `json:"amount"`
	Source string    `json:"source"`
}

type grantResponse struct {
	Granted  bool     `json:"granted"`
	NewTotal int64    `json:"new_total"`
	Reason   string   `json:"reason,omitempty"`
	LevelUp  *levelUp `json:"level_up,omitempty"`
}

type levelUp struct {
	OldLevel int      `json:"old_level"`
	NewLevel int      `json:"new_level"`
	Rewards  []string `json:"rewards,omitempty"`
}

func (h *Handler) handleManualGrant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.UserID.IsNil() {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "user_id is required"))
		return
	}
	source, err := id.ParseXPSource(req.Source)
	if err != nil {
		writeError(w, err)
		return
	}

	grant, err := submit(r.Context(), h.pool, req.UserID, func(ctx context.Context) (*vault.GrantResult, error) {
		return h.coordinator.OnManualGrant(ctx, coordinator.ManualGrant{
			UserID: req.UserID,
			Amount: req.Amount,
			Source: source,
		})
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp := grantResponse{Granted: grant.Granted, NewTotal: grant.NewTotal, Reason: string(grant.Reason)}
	if grant.LevelUp != nil {
		resp.LevelUp = &levelUp{
			OldLevel: grant.LevelUp.OldLevel,
			NewLevel: grant.LevelUp.NewLevel,
			Rewards:  grant.LevelUp.Rewards,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleErasure(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := submit(r.Context(), h.pool, userID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.coordinator.OnErasureRequest(ctx, userID)
	}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// submit routes the work through the per-user pool so HTTP callers get the
// same single-writer guarantee as every other producer, then waits for the
// result.
func submit[T any](ctx context.Context, pool *coordinator.Pool, userID id.UserID, fn func(ctx context.Context) (T, error)) (T, error) {
	type reply struct {
		value T
		err   error
	}
	done := make(chan reply, 1)
	err := pool.Submit(ctx, userID, func(taskCtx context.Context) {
		value, err := fn(taskCtx)
		done <- reply{value: value, err: err}
	})
	if err != nil {
		var zero T
		return zero, domerr.Wrap(err, domerr.CodeStoreTimeout, "event queue full")
	}
	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, domerr.Wrap(ctx.Err(), domerr.CodeStoreTimeout, "timed out waiting for sequence")
	}
}
