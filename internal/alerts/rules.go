package alerts

import (
	"fmt"
	"strings"

	"github.com/aeroshieldgt/enviro-api/internal/aqi"
	"github.com/aeroshieldgt/enviro-api/internal/envdata"
)

// Thresholds holds the trigger levels for every hazard domain.
// Injected rather than hardcoded so config hot-reload can swap them.
type Thresholds struct {
	AQIHigh              int     `yaml:"aqi_high"`               // AQI above this (up to severe) -> high
	AQISevere            int     `yaml:"aqi_severe"`             // AQI above this -> severe
	NO2Medium            float64 `yaml:"no2_medium"`             // µg/m³
	QuakeMagnitudeHigh   float64 `yaml:"quake_magnitude_high"`   // >= -> high
	QuakeMagnitudeSevere float64 `yaml:"quake_magnitude_severe"` // >= -> severe
	PrecipitationMMH     float64 `yaml:"precipitation_mmh"`
	WindSpeedKMH         float64 `yaml:"wind_speed_kmh"`
	UVIndex              float64 `yaml:"uv_index"`
}

// DefaultThresholds matches the levels the service has always shipped with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AQIHigh:              150,
		AQISevere:            200,
		NO2Medium:            40,
		QuakeMagnitudeHigh:   4.5,
		QuakeMagnitudeSevere: 6.0,
		PrecipitationMMH:     20,
		WindSpeedKMH:         30,
		UVIndex:              8,
	}
}

// Volcano statuses arrive in Spanish or English depending on the feed.
// Stems cover active/activo and eruption/erupción/eruptiva. Do not
// extend without checking the upstream wording first.
var volcanoActiveStems = []string{"activo", "active", "erupt", "erupci"}

// Evaluator derives alerts from one snapshot slice. Pure: no I/O, no
// shared state, deterministic for a given snapshot and thresholds.
type Evaluator func(t Thresholds, snap *envdata.Snapshot) []Alert

// EvaluateAirQuality emits at most one alert: severe/high on AQI, or
// medium on elevated NO2 when the AQI itself is unremarkable.
func EvaluateAirQuality(t Thresholds, snap *envdata.Snapshot) []Alert {
	pm25 := snap.Pollutants["PM25"]
	no2 := snap.Pollutants["NO2"]
	index := aqi.FromPM25(pm25)

	if index > t.AQIHigh {
		sev := SeverityHigh
		quality := "UNHEALTHY"
		if index > t.AQISevere {
			sev = SeveritySevere
			quality = "VERY HAZARDOUS"
		}
		return []Alert{{
			HazardType:   HazardAirQuality,
			Severity:     sev,
			Title:        fmt.Sprintf("Hazardous Air Quality - AQI %d", index),
			Description:  fmt.Sprintf("Air quality is %s. Outdoor activity is not recommended.", quality),
			LocationName: snap.Location.Name,
			Latitude:     ptr(snap.Location.Latitude),
			Longitude:    ptr(snap.Location.Longitude),
			OccurredAt:   snap.TakenAt,
			Details: map[string]any{
				"aqi":      index,
				"pm25":     pm25,
				"no2":      no2,
				"category": aqi.Category(index).Category,
				"recommendations": []string{
					"Avoid outdoor activities",
					"Wear a mask outdoors",
					"Keep windows closed",
				},
			},
			DeliveryStatus: StatusPending,
		}}
	}

	if no2 > t.NO2Medium {
		return []Alert{{
			HazardType:   HazardAirQuality,
			Severity:     SeverityMedium,
			Title:        "Elevated NO2 Levels",
			Description:  fmt.Sprintf("Nitrogen dioxide concentration is elevated: %.1f µg/m³", no2),
			LocationName: snap.Location.Name,
			OccurredAt:   snap.TakenAt,
			Details: map[string]any{
				"no2":  no2,
				"unit": "µg/m³",
				"recommendations": []string{
					"Avoid high-traffic areas",
					"Ventilate enclosed spaces",
				},
			},
			DeliveryStatus: StatusPending,
		}}
	}

	return nil
}

// EvaluateEarthquakes emits one alert per qualifying event, in feed order.
func EvaluateEarthquakes(t Thresholds, snap *envdata.Snapshot) []Alert {
	var out []Alert
	for _, q := range snap.Earthquakes {
		if q.Magnitude < t.QuakeMagnitudeHigh {
			continue
		}
		sev := SeverityHigh
		if q.Magnitude >= t.QuakeMagnitudeSevere {
			sev = SeveritySevere
		}
		out = append(out, Alert{
			HazardType:   HazardEarthquake,
			Severity:     sev,
			Title:        fmt.Sprintf("Magnitude %.1f Earthquake", q.Magnitude),
			Description:  fmt.Sprintf("Earthquake detected: %s", q.Place),
			LocationName: "Seismic Region",
			Latitude:     ptr(q.Latitude),
			Longitude:    ptr(q.Longitude),
			OccurredAt:   snap.TakenAt,
			Details: map[string]any{
				"magnitude": q.Magnitude,
				"depth":     q.DepthKM,
				"location":  q.Place,
				"time":      q.Time,
				"recommendations": []string{
					"Move to a safe location",
					"Stay away from windows and heavy objects",
					"Follow instructions from local authorities",
				},
			},
			DeliveryStatus: StatusPending,
		})
	}
	return out
}

// EvaluateVolcanoes emits one high alert per volcano whose status text
// matches an active/eruption stem, case-insensitive.
func EvaluateVolcanoes(_ Thresholds, snap *envdata.Snapshot) []Alert {
	var out []Alert
	for _, v := range snap.Volcanoes {
		status := strings.ToLower(v.Status)
		matched := false
		for _, stem := range volcanoActiveStems {
			if strings.Contains(status, stem) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		out = append(out, Alert{
			HazardType:   HazardVolcano,
			Severity:     SeverityHigh,
			Title:        fmt.Sprintf("Volcanic Activity - %s", v.Name),
			Description:  fmt.Sprintf("Volcano %s is showing activity. Stay informed.", v.Name),
			LocationName: v.Name,
			Latitude:     ptr(v.Latitude),
			Longitude:    ptr(v.Longitude),
			OccurredAt:   snap.TakenAt,
			Details: map[string]any{
				"status":      v.Status,
				"name":        v.Name,
				"last_update": v.LastUpdate,
				"recommendations": []string{
					"Follow instructions from local authorities",
					"Have an evacuation plan ready",
					"Monitor official sources",
				},
			},
			DeliveryStatus: StatusPending,
		})
	}
	return out
}

// EvaluateWeather checks precipitation, wind and UV independently;
// each condition that trips emits its own medium alert.
func EvaluateWeather(t Thresholds, snap *envdata.Snapshot) []Alert {
	var out []Alert
	w := snap.Weather

	if w.PrecipitationMMH > t.PrecipitationMMH {
		out = append(out, Alert{
			HazardType:   HazardWeather,
			Severity:     SeverityMedium,
			Title:        "Heavy Rainfall",
			Description:  fmt.Sprintf("Intense precipitation detected: %.1f mm/h", w.PrecipitationMMH),
			LocationName: snap.Location.Name,
			OccurredAt:   snap.TakenAt,
			Details: map[string]any{
				"precipitation": w.PrecipitationMMH,
				"unit":          "mm/h",
				"recommendations": []string{
					"Avoid flood-prone areas",
					"Drive with caution",
					"Monitor river levels",
				},
			},
			DeliveryStatus: StatusPending,
		})
	}

	if w.WindSpeedKMH > t.WindSpeedKMH {
		out = append(out, Alert{
			HazardType:   HazardWeather,
			Severity:     SeverityMedium,
			Title:        "Strong Winds",
			Description:  fmt.Sprintf("Winds of %.1f km/h detected", w.WindSpeedKMH),
			LocationName: snap.Location.Name,
			OccurredAt:   snap.TakenAt,
			Details: map[string]any{
				"wind_speed": w.WindSpeedKMH,
				"unit":       "km/h",
				"recommendations": []string{
					"Secure outdoor objects",
					"Avoid areas with trees",
					"Take care when driving",
				},
			},
			DeliveryStatus: StatusPending,
		})
	}

	if w.UVIndex > t.UVIndex {
		out = append(out, Alert{
			HazardType:   HazardWeather,
			Severity:     SeverityMedium,
			Title:        "Very High UV Index",
			Description:  fmt.Sprintf("Extreme UV index: %.1f. Use sun protection.", w.UVIndex),
			LocationName: snap.Location.Name,
			OccurredAt:   snap.TakenAt,
			Details: map[string]any{
				"uv_index": w.UVIndex,
				"recommendations": []string{
					"Use SPF 50+ sunscreen",
					"Wear a hat and sunglasses",
					"Avoid sun exposure 10am-4pm",
				},
			},
			DeliveryStatus: StatusPending,
		})
	}

	return out
}

func ptr(f float64) *float64 { return &f }
