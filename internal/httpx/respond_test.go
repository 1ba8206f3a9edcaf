package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotel-system/internal/reservation"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{reservation.ErrNotFound, http.StatusNotFound},
		{reservation.ErrInvalidIdentifier, http.StatusBadRequest},
		{reservation.ErrInvalidTransition, http.StatusBadRequest},
		{reservation.ErrPreconditionFailed, http.StatusConflict},
		{reservation.ErrStoreUnavailable, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
		// wrapped sentinels must still map
		{fmt.Errorf("gift %q: %w", "abc", reservation.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("order: %w", reservation.ErrPreconditionFailed), http.StatusConflict},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Errorf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"] != "Server Error" {
		t.Errorf("error = %q, want generic message", body["error"])
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestRespondErrorKeepsClientDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, fmt.Errorf("gift %q: %w", "undefined", reservation.ErrInvalidIdentifier))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"] == "Server Error" {
		t.Error("client errors should not be masked")
	}
}

func TestRespondListShape(t *testing.T) {
	rec := httptest.NewRecorder()
	respondList(rec, 2, []string{"a", "b"})

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var body struct {
		Success bool     `json:"success"`
		Count   int      `json:"count"`
		Data    []string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Success || body.Count != 2 || len(body.Data) != 2 {
		t.Errorf("unexpected body: %+v", body)
	}
}
