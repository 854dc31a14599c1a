package envdata

import (
	"math"
	"math/rand"
	"time"
)

// Simulated readings substitute for any upstream that fails or is not
// configured. Shapes and magnitudes mirror typical readings for the
// region so downstream consumers behave the same either way.

// SimulatedPollutants models the diurnal traffic cycle: NO2 peaks with
// rush hours, PM2.5 floats around its urban baseline.
func SimulatedPollutants(now time.Time) map[string]float64 {
	hour := float64(now.UTC().Hour())
	trafficFactor := 0.8 + 0.4*math.Sin((hour-8)*math.Pi/12)
	return map[string]float64{
		"NO2":  math.Max(8, 15*trafficFactor*(0.9+0.2*rand.Float64())),
		"PM25": math.Max(25, 45*(0.8+0.4*rand.Float64())),
		"O3":   math.Max(20, 30*(0.8+0.4*rand.Float64())),
		"HCHO": math.Max(3, 7*(0.8+0.4*rand.Float64())),
	}
}

// SimulatedWeather follows a diurnal temperature sine around 22°C.
func SimulatedWeather(now time.Time) *WeatherReading {
	hour := float64(now.UTC().Hour())
	baseTemp := 22 + 8*math.Sin((hour-6)*math.Pi/12)
	return &WeatherReading{
		TemperatureC:     round1(baseTemp + (rand.Float64()*4 - 2)),
		HumidityPct:      float64(40 + rand.Intn(46)),
		PrecipitationMMH: round1(rand.Float64() * 5),
		WindSpeedKMH:     round1(rand.Float64() * 15),
		WindDirectionDeg: float64(rand.Intn(361)),
		PressureHPa:      round1(1013 + (rand.Float64()*20 - 10)),
		WeatherCode:      1 + rand.Intn(27),
		UVIndex:          round1(1 + rand.Float64()*11),
		VisibilityKM:     round1(5 + rand.Float64()*15),
		Source:           "simulated",
	}
}

// SimulatedForecast extends the current simulation over the next days.
func SimulatedForecast(now time.Time, days int) []ForecastDay {
	out := make([]ForecastDay, 0, days)
	for i := 1; i <= days; i++ {
		out = append(out, ForecastDay{
			Date:             now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, i),
			TemperatureC:     round1(20 + rand.Float64()*8),
			PrecipitationMMH: round1(rand.Float64() * 10),
			WindSpeedKMH:     round1(rand.Float64() * 20),
			WeatherCode:      1 + rand.Intn(27),
			Source:           "simulated",
		})
	}
	return out
}

// SimulatedEarthquakes scatters five plausible epicenters over the
// region's seismic band.
func SimulatedEarthquakes(now time.Time) []SeismicEvent {
	out := make([]SeismicEvent, 0, 5)
	for i := 0; i < 5; i++ {
		out = append(out, SeismicEvent{
			Magnitude: round1(3.5 + rand.Float64()*2.5),
			DepthKM:   round1(10 + rand.Float64()*60),
			Place:     "Simulated epicenter",
			Latitude:  13.0 + rand.Float64()*3.0,
			Longitude: -91.5 + rand.Float64()*3.5,
			Time:      now.UTC(),
			Source:    "simulated",
		})
	}
	return out
}

// SimulatedWindGrid covers the bbox with plausible light winds.
func SimulatedWindGrid(bbox BBox, grid int) []WindVector {
	if grid <= 1 {
		grid = 3
	}
	out := make([]WindVector, 0, grid*grid)
	for i := 0; i < grid; i++ {
		lat := bbox[1] + (bbox[3]-bbox[1])*float64(i)/float64(grid-1)
		for j := 0; j < grid; j++ {
			lon := bbox[0] + (bbox[2]-bbox[0])*float64(j)/float64(grid-1)
			out = append(out, WindVector{
				Latitude:  lat,
				Longitude: lon,
				SpeedMS:   round1(2.5 + rand.Float64()*7.3),
				Direction: float64(rand.Intn(361)),
				Source:    "simulated",
			})
		}
	}
	return out
}

// SimulatedHeatmap seeds map points from the tracked cities: one anchor
// per city plus three jittered satellites, intensity scaled by
// population.
func SimulatedHeatmap() []AirPoint {
	out := make([]AirPoint, 0, len(GuatemalaCities)*4)
	for _, city := range GuatemalaCities {
		intensity := math.Min(1.0, 0.4+float64(city.Population)/3000000*0.5)
		out = append(out, AirPoint{
			Latitude:  city.Latitude,
			Longitude: city.Longitude,
			Intensity: intensity,
			City:      city.Name,
			Source:    "simulated",
		})
		for i := 0; i < 3; i++ {
			out = append(out, AirPoint{
				Latitude:  city.Latitude + (rand.Float64()-0.5)*0.1,
				Longitude: city.Longitude + (rand.Float64()-0.5)*0.1,
				Intensity: math.Max(0.1, intensity*(0.6+0.4*rand.Float64())),
				City:      city.Name,
				Source:    "simulated",
			})
		}
	}
	return out
}

// SimulatedStations mirrors the heatmap anchors as station records.
func SimulatedStations(now time.Time) []Station {
	out := make([]Station, 0, len(GuatemalaCities))
	for _, city := range GuatemalaCities {
		out = append(out, Station{
			Name:        city.Name,
			Latitude:    city.Latitude,
			Longitude:   city.Longitude,
			LastUpdated: now.UTC(),
			Source:      "simulated",
		})
	}
	return out
}

// SimulatedVolcanoes lists the region's three persistently active
// volcanoes with their usual states.
func SimulatedVolcanoes(now time.Time) []VolcanicStatus {
	return []VolcanicStatus{
		{Name: "Volcán de Fuego", Status: "activo", Latitude: 14.473, Longitude: -90.88, LastUpdate: now.UTC(), Source: "simulated"},
		{Name: "Pacaya", Status: "moderado", Latitude: 14.382, Longitude: -90.601, LastUpdate: now.UTC(), Source: "simulated"},
		{Name: "Santiaguito", Status: "activo", Latitude: 14.757, Longitude: -91.566, LastUpdate: now.UTC(), Source: "simulated"},
	}
}
