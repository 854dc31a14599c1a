// Package envdata assembles normalized environmental snapshots from
// upstream providers (USGS, EONET, Meteomatics, OpenAQ), substituting
// simulated readings whenever a source is unavailable.
package envdata

import "time"

// SeismicEvent is one normalized earthquake record.
type SeismicEvent struct {
	Magnitude float64   `json:"magnitude"`
	DepthKM   float64   `json:"depth"`
	Place     string    `json:"place"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Time      time.Time `json:"time"`
	Source    string    `json:"source"`
}

// VolcanicStatus is one normalized volcano activity record.
type VolcanicStatus struct {
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lon"`
	LastUpdate time.Time `json:"last_update"`
	Source     string    `json:"source"`
}

// WeatherReading is the current-conditions slice of a snapshot.
type WeatherReading struct {
	TemperatureC     float64 `json:"temperature"`
	HumidityPct      float64 `json:"humidity"`
	PrecipitationMMH float64 `json:"precipitation"`
	WindSpeedKMH     float64 `json:"wind_speed"`
	WindDirectionDeg float64 `json:"wind_direction"`
	PressureHPa      float64 `json:"pressure"`
	UVIndex          float64 `json:"uv_index"`
	VisibilityKM     float64 `json:"visibility"`
	WeatherCode      int     `json:"weather_code"`
	Source           string  `json:"source"`
}

// ForecastDay is one day of the weather forecast.
type ForecastDay struct {
	Date             time.Time `json:"date"`
	TemperatureC     float64   `json:"temperature"`
	PrecipitationMMH float64   `json:"precipitation"`
	WindSpeedKMH     float64   `json:"wind_speed"`
	WeatherCode      int       `json:"weather_code"`
	Source           string    `json:"source"`
}

// Station is an air quality measurement site.
type Station struct {
	Name        string    `json:"name"`
	Latitude    float64   `json:"lat"`
	Longitude   float64   `json:"lon"`
	LastUpdated time.Time `json:"last_updated"`
	Source      string    `json:"source"`
}

// AirPoint is one air quality sample used for heatmaps.
type AirPoint struct {
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	Intensity float64  `json:"intensity"`
	AQI       *int     `json:"aqi,omitempty"`
	PM25      *float64 `json:"pm25,omitempty"`
	NO2       *float64 `json:"no2,omitempty"`
	Station   string   `json:"station,omitempty"`
	City      string   `json:"city,omitempty"`
	Source    string   `json:"source"`
}

// WindVector is one node of the regional wind grid.
type WindVector struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	SpeedMS   float64 `json:"speed"`
	Direction float64 `json:"direction"`
	Source    string  `json:"source"`
}

// Location names a point the snapshot is anchored to.
type Location struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lon" yaml:"lon"`
}

// Snapshot is a point-in-time bundle of normalized readings for one
// pipeline cycle. Immutable once built; real and simulated data look
// identical to consumers.
type Snapshot struct {
	Location    Location           `json:"location"`
	Pollutants  map[string]float64 `json:"pollutants"` // name -> µg/m³
	Weather     WeatherReading     `json:"weather"`
	Earthquakes []SeismicEvent     `json:"earthquakes"`
	Volcanoes   []VolcanicStatus   `json:"volcanoes"`
	TakenAt     time.Time          `json:"taken_at"`
}
