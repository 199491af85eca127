package httptransport

import (
	"encoding/json"
	"net/http"

	"helix/internal/gateway"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
)

type handshakeRequest struct {
	SiloID string `json:"silo_id"`
	APIKey string `json:"api_key"`
	Intent string `json:"intent"`
}

type handshakeResponse struct {
	Authorized   bool   `json:"authorized"`
	SiloName     string `json:"silo_name,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func (h *Handler) handleHandshake(w http.ResponseWriter, r *http.Request) {
	var req handshakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "malformed request body"))
		return
	}
	siloID, err := id.ParseSiloID(req.SiloID)
	if err != nil {
		writeError(w, err)
		return
	}
	intent, err := id.ParseIntent(req.Intent)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.gateway.Handshake(r.Context(), siloID, req.APIKey, intent)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if !result.Authorized {
		status = http.StatusUnauthorized
		if result.Reason == domerr.CodeLockedOut {
			status = http.StatusTooManyRequests
		}
		if result.Reason == domerr.CodeWriteNotAuthorized {
			status = http.StatusForbidden
		}
	}
	writeJSON(w, status, handshakeResponse{
		Authorized:   result.Authorized,
		SiloName:     result.SiloName,
		SessionToken: result.SessionToken,
		Reason:       string(result.Reason),
	})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, domerr.New(domerr.CodeInvalidKey, "missing session token"))
		return
	}
	h.gateway.Revoke(r.Context(), token)
	w.WriteHeader(http.StatusNoContent)
}

type siloResponse struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"display_name"`
	Capabilities []string `json:"capabilities"`
	Active       bool     `json:"active"`
}

func (h *Handler) handleListSilos(w http.ResponseWriter, r *http.Request) {
	silos := h.gateway.ListSilos()
	out := make([]siloResponse, 0, len(silos))
	for _, silo := range silos {
		caps := make([]string, 0, len(silo.Capabilities))
		for _, c := range silo.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, siloResponse{
			ID:           silo.ID.String(),
			DisplayName:  silo.DisplayName,
			Capabilities: caps,
			Active:       silo.Active,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type updateResponse struct {
	OK            bool     `json:"ok"`
	AppliedFields []string `json:"applied_fields,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

func (h *Handler) handleSecureUpdate(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, domerr.New(domerr.CodeInvalidKey, "missing session token"))
		return
	}
	userID, err := pathUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var updates gateway.Updates
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, domerr.New(domerr.CodeInvalidInput, "malformed request body"))
		return
	}

	result, err := h.gateway.SecureUpdate(r.Context(), token, userID, updates)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if !result.OK {
		status = statusForCode(result.Reason)
	}
	writeJSON(w, status, updateResponse{
		OK:            result.OK,
		AppliedFields: result.AppliedFields,
		Reason:        string(result.Reason),
	})
}
