package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"hotel-system/internal/reservation"
)

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondData(w http.ResponseWriter, code int, v any) {
	writeJSON(w, code, map[string]any{"success": true, "data": v})
}

func respondList(w http.ResponseWriter, count int, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": count, "data": v})
}

func respondFail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}

// statusFor maps engine/repo outcomes onto transport codes: absence is 404,
// malformed input 400, a lost conditional update 409, a forbidden lifecycle
// move 400, store trouble 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, reservation.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, reservation.ErrPreconditionFailed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "Server Error"
	}
	respondFail(w, code, msg)
}
