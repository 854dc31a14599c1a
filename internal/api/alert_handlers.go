package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aeroshieldgt/enviro-api/internal/alerts"
	"github.com/aeroshieldgt/enviro-api/internal/data"
)

// CycleRunner triggers one pipeline cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*alerts.CycleResult, error)
}

// TestDispatcher sends the test alert used by the send-test endpoint.
type TestDispatcher interface {
	DispatchMulticast(ctx context.Context, a *alerts.Alert, tokens []string) (*alerts.DispatchResult, int, error)
	Dispatch(ctx context.Context, a *alerts.Alert) (*alerts.DispatchResult, error)
}

type AlertHandler struct {
	Pipeline   CycleRunner
	Dispatcher TestDispatcher
	Repo       data.AlertRepository
	Location   string
	Latitude   float64
	Longitude  float64
}

// CheckAlerts runs a full cycle on demand and reports the counts.
func (h *AlertHandler) CheckAlerts(w http.ResponseWriter, r *http.Request) {
	res, err := h.Pipeline.RunCycle(r.Context())
	if err != nil {
		http.Error(w, "failed to run alert cycle", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type sendTestRequest struct {
	Tokens []string `json:"tokens"`
}

// SendTest dispatches a fixed test alert, multicast when device tokens
// are given, broadcast otherwise.
func (h *AlertHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	var req sendTestRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // Empty body means broadcast
	}

	lat, lon := h.Latitude, h.Longitude
	a := &alerts.Alert{
		HazardType:   alerts.HazardAirQuality,
		Severity:     alerts.SeverityHigh,
		Title:        "Test Alert - Air Quality",
		Description:  "This is a test notification from the environmental alert system.",
		LocationName: h.Location,
		Latitude:     &lat,
		Longitude:    &lon,
		OccurredAt:   time.Now().UTC(),
		Details: map[string]any{
			"test":    true,
			"message": "Test notification successful",
			"recommendations": []string{
				"This is a test alert",
				"No action required",
			},
		},
		DeliveryStatus: alerts.StatusPending,
	}

	var result *alerts.DispatchResult
	var sent int
	var err error
	if len(req.Tokens) > 0 {
		result, sent, err = h.Dispatcher.DispatchMulticast(r.Context(), a, req.Tokens)
	} else {
		result, err = h.Dispatcher.Dispatch(r.Context(), a)
		if err == nil && result.Delivered {
			sent = 1
		}
	}
	if err != nil {
		http.Error(w, "failed to persist test alert", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "test alert dispatched",
		"alert":   a,
		"result":  result,
		"sent":    sent,
	})
}

// History lists persisted alerts, newest first.
func (h *AlertHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	hazardType := r.URL.Query().Get("type")

	records, err := h.Repo.ListRecent(r.Context(), limit, hazardType)
	if err != nil {
		http.Error(w, "failed to list alerts", http.StatusInternalServerError)
		return
	}
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cutoff := time.Now().Add(-time.Duration(n) * time.Hour)
			kept := records[:0]
			for _, rec := range records {
				if rec.CreatedAt.After(cutoff) {
					kept = append(kept, rec)
				}
			}
			records = kept
		}
	}
	if records == nil {
		records = []*data.AlertRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": records,
		"count":  len(records),
	})
}

// Stats aggregates alert counts over a trailing window (default 24h).
func (h *AlertHandler) Stats(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 30 {
			hours = n * 24
		}
	}
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 24*30 {
			hours = n
		}
	}

	stats, err := h.Repo.Stats(r.Context(), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"period_hours": hours,
		"stats":        stats,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
