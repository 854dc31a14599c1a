package alerts

import (
	"strings"
	"testing"
	"time"

	"github.com/aeroshieldgt/enviro-api/internal/envdata"
)

func testSnapshot() *envdata.Snapshot {
	return &envdata.Snapshot{
		Location: envdata.Location{Name: "Guatemala City", Latitude: 14.6349, Longitude: -90.5069},
		Pollutants: map[string]float64{
			"PM25": 10,
			"NO2":  15,
		},
		TakenAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestEvaluateAirQuality_SeverePM25(t *testing.T) {
	snap := testSnapshot()
	snap.Pollutants["PM25"] = 160

	out := EvaluateAirQuality(DefaultThresholds(), snap)
	if len(out) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(out))
	}
	a := out[0]
	if a.Severity != SeveritySevere {
		t.Errorf("pm25=160 must be severe, got %s", a.Severity)
	}
	if !strings.Contains(a.Title, "210") {
		t.Errorf("title should carry the computed AQI, got %q", a.Title)
	}
	if a.Details["aqi"] != 210 {
		t.Errorf("expected aqi 210 in details, got %v", a.Details["aqi"])
	}
}

func TestEvaluateAirQuality_HighBand(t *testing.T) {
	snap := testSnapshot()
	snap.Pollutants["PM25"] = 60 // AQI 153

	out := EvaluateAirQuality(DefaultThresholds(), snap)
	if len(out) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(out))
	}
	if out[0].Severity != SeverityHigh {
		t.Errorf("expected high, got %s", out[0].Severity)
	}
}

func TestEvaluateAirQuality_NO2Fallback(t *testing.T) {
	snap := testSnapshot()
	snap.Pollutants["NO2"] = 55

	out := EvaluateAirQuality(DefaultThresholds(), snap)
	if len(out) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(out))
	}
	if out[0].Severity != SeverityMedium {
		t.Errorf("elevated NO2 is medium, got %s", out[0].Severity)
	}
	if out[0].Title != "Elevated NO2 Levels" {
		t.Errorf("unexpected title %q", out[0].Title)
	}
}

func TestEvaluateAirQuality_Clean(t *testing.T) {
	if out := EvaluateAirQuality(DefaultThresholds(), testSnapshot()); out != nil {
		t.Errorf("clean air must produce no alerts, got %d", len(out))
	}
}

func TestEvaluateEarthquakes_Bands(t *testing.T) {
	snap := testSnapshot()
	snap.Earthquakes = []envdata.SeismicEvent{
		{Magnitude: 3.0, Place: "Offshore Escuintla"},
		{Magnitude: 5.0, Place: "Near Antigua"},
		{Magnitude: 6.5, Place: "Pacific coast"},
	}

	out := EvaluateEarthquakes(DefaultThresholds(), snap)
	if len(out) != 2 {
		t.Fatalf("magnitudes [3.0 5.0 6.5] must yield 2 alerts, got %d", len(out))
	}
	if out[0].Severity != SeverityHigh {
		t.Errorf("5.0 should be high, got %s", out[0].Severity)
	}
	if out[1].Severity != SeveritySevere {
		t.Errorf("6.5 should be severe, got %s", out[1].Severity)
	}
	if !strings.Contains(out[1].Title, "6.5") {
		t.Errorf("title should carry magnitude, got %q", out[1].Title)
	}
}

func TestEvaluateVolcanoes_StatusMatching(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{"activo", true},
		{"Erupción en curso", true},
		{"Actividad eruptiva menor", true},
		{"Active degassing", true},
		{"tranquilo", false},
		{"dormant", false},
	}

	for _, c := range cases {
		snap := testSnapshot()
		snap.Volcanoes = []envdata.VolcanicStatus{{Name: "Fuego", Status: c.status}}

		out := EvaluateVolcanoes(DefaultThresholds(), snap)
		if got := len(out) == 1; got != c.want {
			t.Errorf("status %q: alert=%v, want %v", c.status, got, c.want)
		}
		if c.want && out[0].Severity != SeverityHigh {
			t.Errorf("volcano alerts are high, got %s", out[0].Severity)
		}
	}
}

func TestEvaluateWeather_IndependentConditions(t *testing.T) {
	snap := testSnapshot()
	snap.Weather = envdata.WeatherReading{
		PrecipitationMMH: 25,
		WindSpeedKMH:     45,
		UVIndex:          9.5,
	}

	out := EvaluateWeather(DefaultThresholds(), snap)
	if len(out) != 3 {
		t.Fatalf("all three conditions tripped, expected 3 alerts, got %d", len(out))
	}
	for _, a := range out {
		if a.Severity != SeverityMedium {
			t.Errorf("weather alerts are medium, got %s for %q", a.Severity, a.Title)
		}
	}
}

func TestEvaluateWeather_Calm(t *testing.T) {
	snap := testSnapshot()
	snap.Weather = envdata.WeatherReading{PrecipitationMMH: 2, WindSpeedKMH: 10, UVIndex: 4}

	if out := EvaluateWeather(DefaultThresholds(), snap); len(out) != 0 {
		t.Errorf("calm weather must produce no alerts, got %d", len(out))
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !SeveritySevere.AtLeast(SeverityHigh) {
		t.Error("severe >= high")
	}
	if SeverityLow.AtLeast(SeverityMedium) {
		t.Error("low < medium")
	}
	if Severity("bogus").Rank() != -1 {
		t.Error("unknown severity ranks below low")
	}
}
