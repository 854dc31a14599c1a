package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aeroshieldgt/enviro-api/internal/alerts"
	"github.com/aeroshieldgt/enviro-api/internal/aqi"
	"github.com/aeroshieldgt/enviro-api/internal/cache"
	"github.com/aeroshieldgt/enviro-api/internal/envdata"
)

type EnvHandler struct {
	Provider   *envdata.Provider
	Cache      *cache.Cache
	Thresholds func() alerts.Thresholds
	Evaluate   func(snap *envdata.Snapshot) []alerts.Alert
}

// cachedJSON serves from the shared cache or recomputes and stores.
func (h *EnvHandler) cachedJSON(w http.ResponseWriter, r *http.Request, key string, compute func() (any, error)) {
	if h.Cache != nil {
		var cached map[string]any
		if err := h.Cache.Get(r.Context(), key, &cached); err == nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	value, err := compute()
	if err != nil {
		http.Error(w, "failed to assemble response", http.StatusBadGateway)
		return
	}
	if h.Cache != nil {
		if err := h.Cache.Set(r.Context(), key, value); err != nil {
			log.Printf("api: cache write failed for %s: %v", key, err)
		}
	}
	writeJSON(w, http.StatusOK, value)
}

// DashboardSummary returns the headline numbers the mobile app shows
// on its front screen.
func (h *EnvHandler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	h.cachedJSON(w, r, "dashboard_summary", func() (any, error) {
		snap, err := h.Provider.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}

		pm25 := snap.Pollutants["PM25"]
		index := aqi.FromPM25(pm25)
		active := h.Evaluate(snap)

		return map[string]any{
			"location":      snap.Location,
			"aqi":           index,
			"aqi_category":  aqi.Category(index),
			"pollutants":    snap.Pollutants,
			"weather":       snap.Weather,
			"active_alerts": len(active),
			"earthquakes":   len(snap.Earthquakes),
			"volcanoes":     len(snap.Volcanoes),
			"last_updated":  snap.TakenAt,
		}, nil
	})
}

// EnvironmentFull returns the complete snapshot with stations,
// heatmap points and the forecast. With ?global=true the response also
// carries per-city pollution derived from the regional readings.
func (h *EnvHandler) EnvironmentFull(w http.ResponseWriter, r *http.Request) {
	global := r.URL.Query().Get("global") == "true"
	key := "environment_full"
	if global {
		key = "environment_full_global"
	}

	h.cachedJSON(w, r, key, func() (any, error) {
		snap, err := h.Provider.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		pollutants, stations, points := h.Provider.AirDetail(r.Context())

		resp := map[string]any{
			"snapshot":   snap,
			"pollutants": pollutants,
			"stations":   stations,
			"heatmap":    points,
			"wind":       h.Provider.WindGrid(r.Context()),
			"forecast":   h.Provider.Forecast(r.Context(), 3),
		}
		if global {
			resp["cities"] = cityReadings(snap.Pollutants["PM25"])
		}
		return resp, nil
	})
}

func (h *EnvHandler) WeatherCurrent(w http.ResponseWriter, r *http.Request) {
	h.cachedJSON(w, r, "weather_current", func() (any, error) {
		snap, err := h.Provider.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"location":     snap.Location,
			"weather":      snap.Weather,
			"last_updated": snap.TakenAt,
		}, nil
	})
}

func (h *EnvHandler) WeatherForecast(w http.ResponseWriter, r *http.Request) {
	days := 3
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 7 {
			days = n
		}
	}

	h.cachedJSON(w, r, "weather_forecast_"+strconv.Itoa(days), func() (any, error) {
		return map[string]any{
			"forecast_days": h.Provider.Forecast(r.Context(), days),
			"last_updated":  time.Now().UTC(),
		}, nil
	})
}

type cityReading struct {
	envdata.City
	PM25 float64 `json:"pm25"`
	AQI  int     `json:"aqi"`
}

// Station coverage outside the capital is thin, so city readings derive
// from the regional snapshot scaled by population density.
func cityReadings(basePM25 float64) []cityReading {
	out := make([]cityReading, 0, len(envdata.GuatemalaCities))
	for _, city := range envdata.GuatemalaCities {
		scale := 0.6 + 0.4*float64(city.Population)/3000000
		pm25 := basePM25 * scale
		out = append(out, cityReading{
			City: city,
			PM25: pm25,
			AQI:  aqi.FromPM25(pm25),
		})
	}
	return out
}

// CitiesPollution reports per-city air quality.
func (h *EnvHandler) CitiesPollution(w http.ResponseWriter, r *http.Request) {
	h.cachedJSON(w, r, "cities_pollution", func() (any, error) {
		snap, err := h.Provider.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"cities":       cityReadings(snap.Pollutants["PM25"]),
			"last_updated": snap.TakenAt,
		}, nil
	})
}

// WeatherCities reports current conditions per tracked city. Only one
// regional weather point is available, so each city carries the
// regional reading anchored at its own coordinates.
func (h *EnvHandler) WeatherCities(w http.ResponseWriter, r *http.Request) {
	h.cachedJSON(w, r, "weather_cities", func() (any, error) {
		snap, err := h.Provider.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}

		type cityWeather struct {
			envdata.City
			Weather envdata.WeatherReading `json:"weather"`
		}
		out := make([]cityWeather, 0, len(envdata.GuatemalaCities))
		for _, city := range envdata.GuatemalaCities {
			out = append(out, cityWeather{City: city, Weather: snap.Weather})
		}
		return map[string]any{
			"cities":       out,
			"last_updated": snap.TakenAt,
		}, nil
	})
}

// Pollutant returns the current level of one pollutant with its alert
// threshold context.
func (h *EnvHandler) Pollutant(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "pollutant")

	snap, err := h.Provider.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "failed to fetch readings", http.StatusBadGateway)
		return
	}

	value, ok := snap.Pollutants[name]
	if !ok {
		http.Error(w, "unknown pollutant", http.StatusNotFound)
		return
	}

	resp := map[string]any{
		"pollutant":    name,
		"value":        value,
		"unit":         "µg/m³",
		"last_updated": snap.TakenAt,
	}
	t := h.Thresholds()
	switch name {
	case "PM25":
		index := aqi.FromPM25(value)
		resp["aqi"] = index
		resp["category"] = aqi.Category(index)
		resp["alert_threshold_aqi"] = t.AQIHigh
	case "NO2":
		resp["alert_threshold"] = t.NO2Medium
	}
	writeJSON(w, http.StatusOK, resp)
}

// Healthz is the liveness probe.
func (h *EnvHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"region":    "Guatemala",
		"timestamp": time.Now().UTC(),
	})
}
