package alerts

import (
	"encoding/json"
	"time"

	"github.com/aeroshieldgt/enviro-api/internal/notify"
)

// severityGlyphs prefix the notification title by severity. The mobile
// clients key their banner styling off these, so they must not change.
var severityGlyphs = map[Severity]string{
	SeverityLow:    "ℹ️",
	SeverityMedium: "⚠️",
	SeverityHigh:   "🚨",
	SeveritySevere: "🔥",
}

// BuildPayload renders an alert into a push payload. Unknown severities
// get the medium glyph rather than none.
func BuildPayload(a *Alert) notify.Payload {
	glyph, ok := severityGlyphs[a.Severity]
	if !ok {
		glyph = severityGlyphs[SeverityMedium]
	}

	data := map[string]string{
		"alert_type": string(a.HazardType),
		"severity":   string(a.Severity),
		"timestamp":  a.OccurredAt.UTC().Format(time.RFC3339),
		"location":   a.LocationName,
	}
	if a.Latitude != nil && a.Longitude != nil {
		data["latitude"] = formatFloat(*a.Latitude)
		data["longitude"] = formatFloat(*a.Longitude)
	}
	if a.PersistedID != "" {
		data["alert_id"] = a.PersistedID
	}
	if len(a.Details) > 0 {
		if b, err := json.Marshal(a.Details); err == nil {
			data["details"] = string(b)
		}
	}

	return notify.Payload{
		Title: glyph + " " + a.Title,
		Body:  a.Description,
		Data:  data,
	}
}

func formatFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
