package alerts

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestBuildPayload_Glyphs(t *testing.T) {
	cases := []struct {
		severity Severity
		glyph    string
	}{
		{SeverityLow, "ℹ️"},
		{SeverityMedium, "⚠️"},
		{SeverityHigh, "🚨"},
		{SeveritySevere, "🔥"},
		{Severity("bogus"), "⚠️"}, // unknown falls back to medium
	}

	for _, c := range cases {
		p := BuildPayload(&Alert{Severity: c.severity, Title: "Test Alert"})
		if !strings.HasPrefix(p.Title, c.glyph+" ") {
			t.Errorf("severity %q: title %q missing glyph %q", c.severity, p.Title, c.glyph)
		}
	}
}

func TestBuildPayload_Data(t *testing.T) {
	lat, lon := 14.473, -90.88
	a := &Alert{
		HazardType:   HazardVolcano,
		Severity:     SeverityHigh,
		Title:        "Volcanic Activity - Fuego",
		Description:  "Volcano Fuego is showing activity. Stay informed.",
		LocationName: "Fuego",
		Latitude:     &lat,
		Longitude:    &lon,
		OccurredAt:   time.Date(2026, 3, 14, 10, 15, 0, 0, time.UTC),
		Details:      map[string]any{"status": "activo"},
		PersistedID:  "a3a9f0ee-0000-0000-0000-000000000001",
	}

	p := BuildPayload(a)
	if p.Body != a.Description {
		t.Errorf("body mismatch: %q", p.Body)
	}
	if p.Data["alert_type"] != "volcano" || p.Data["severity"] != "high" {
		t.Errorf("type/severity not carried: %v", p.Data)
	}
	if p.Data["timestamp"] != "2026-03-14T10:15:00Z" {
		t.Errorf("timestamp not RFC3339: %q", p.Data["timestamp"])
	}
	if p.Data["latitude"] != "14.473" || p.Data["longitude"] != "-90.88" {
		t.Errorf("coordinates not serialized: %v", p.Data)
	}
	if p.Data["alert_id"] != a.PersistedID {
		t.Errorf("alert id missing: %v", p.Data)
	}

	var details map[string]any
	if err := json.Unmarshal([]byte(p.Data["details"]), &details); err != nil {
		t.Fatalf("details not valid JSON: %v", err)
	}
	if details["status"] != "activo" {
		t.Errorf("details content lost: %v", details)
	}
}

func TestBuildPayload_NoCoordinates(t *testing.T) {
	p := BuildPayload(&Alert{Severity: SeverityMedium, Title: "Heavy Rainfall"})
	if _, ok := p.Data["latitude"]; ok {
		t.Error("latitude must be absent without coordinates")
	}
	if _, ok := p.Data["alert_id"]; ok {
		t.Error("alert_id must be absent before persistence")
	}
}
