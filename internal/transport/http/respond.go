package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"helix/pkg/domerr"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func statusForCode(code domerr.Code) int {
	switch code {
	case domerr.CodeInvalidInput:
		return http.StatusBadRequest
	case domerr.CodeNotFound:
		return http.StatusNotFound
	case domerr.CodeInvalidKey, domerr.CodeSiloNotFound:
		return http.StatusUnauthorized
	case domerr.CodeWriteNotAuthorized:
		return http.StatusForbidden
	case domerr.CodeLockedOut:
		return http.StatusTooManyRequests
	case domerr.CodeStoreTimeout, domerr.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates the domain error taxonomy to HTTP statuses. Business
// rejections (gate, monotonicity) never reach this path: they come back as
// result values with a 200.
func writeError(w http.ResponseWriter, err error) {
	code := domerr.CodeOf(err)
	body := errorBody{Error: string(code)}
	var de *domerr.Error
	if errors.As(err, &de) {
		body.Message = de.Message
	}
	writeJSON(w, statusForCode(code), body)
}
