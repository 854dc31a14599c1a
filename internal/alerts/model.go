package alerts

import (
	"time"
)

// HazardType identifies the alert domain.
type HazardType string

const (
	HazardAirQuality HazardType = "air_quality"
	HazardEarthquake HazardType = "earthquake"
	HazardVolcano    HazardType = "volcano"
	HazardWeather    HazardType = "weather"
	HazardFlood      HazardType = "flood"
	HazardLandslide  HazardType = "landslide"
)

// Severity is totally ordered: low < medium < high < severe.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
	SeveritySevere Severity = "severe"
)

var severityRank = map[Severity]int{
	SeverityLow:    0,
	SeverityMedium: 1,
	SeverityHigh:   2,
	SeveritySevere: 3,
}

// Rank returns the position of s in the severity order.
// Unknown severities rank below low.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether s is at or above min in the severity order.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// Delivery status values for a persisted alert.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusError   = "error"
)

// Alert is a derived hazard alert. Created by the rule engine with
// status pending; the dispatcher assigns PersistedID and flips the
// delivery fields exactly once.
type Alert struct {
	HazardType   HazardType     `json:"hazard_type"`
	Severity     Severity       `json:"severity"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	LocationName string         `json:"location_name"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
	Details      map[string]any `json:"details"`

	DeliveryStatus string `json:"delivery_status"`
	Delivered      bool   `json:"delivered"`
	PersistedID    string `json:"persisted_id,omitempty"`
}

// DispatchResult reports the outcome of one dispatch. Dispatch never
// propagates transport failures; callers read this instead.
type DispatchResult struct {
	Status      string
	Delivered   bool
	PersistedID string
	MessageID   string
}

// CycleResult summarizes one orchestrator run.
type CycleResult struct {
	AlertsDetected   int       `json:"alerts_detected"`
	AlertsSent       int       `json:"alerts_sent"`
	AlertsSuppressed int       `json:"alerts_suppressed"`
	AlertsFailed     int       `json:"alerts_failed"`
	RanAt            time.Time `json:"ran_at"`
}
