package envdata

import (
	"context"
	"log"
	"sync"
	"time"
)

// SeismicSource, VolcanoSource, WeatherSource and AirSource let tests
// swap individual upstreams without faking HTTP.
type SeismicSource interface {
	FetchEarthquakes(ctx context.Context) ([]SeismicEvent, error)
}

type VolcanoSource interface {
	FetchVolcanoes(ctx context.Context) ([]VolcanicStatus, error)
}

type WeatherSource interface {
	FetchCurrent(ctx context.Context, lat, lon float64) (*WeatherReading, error)
	FetchForecast(ctx context.Context, lat, lon float64, days int) ([]ForecastDay, error)
}

type AirSource interface {
	FetchLatest(ctx context.Context) (map[string]float64, []Station, []AirPoint, error)
}

type WindSource interface {
	FetchWindGrid(ctx context.Context) ([]WindVector, error)
}

// Provider assembles snapshots from the four upstreams. Each source is
// fetched independently; a failing source is logged and replaced with
// simulated data so one dead feed never blocks a cycle.
type Provider struct {
	location Location
	seismic  SeismicSource
	volcano  VolcanoSource
	weather  WeatherSource
	air      AirSource
	wind     WindSource
	status   func(source string, up bool)
}

func NewProvider(location Location, seismic SeismicSource, volcano VolcanoSource, weather WeatherSource, air AirSource) *Provider {
	return &Provider{
		location: location,
		seismic:  seismic,
		volcano:  volcano,
		weather:  weather,
		air:      air,
	}
}

// SetWindSource attaches the optional wind grid upstream. The grid is
// only served by the map endpoints, so it stays out of Snapshot.
func (p *Provider) SetWindSource(ws WindSource) {
	p.wind = ws
}

// OnSourceStatus registers a hook called after each fetch with whether
// the source delivered real data. Call before the first Snapshot.
func (p *Provider) OnSourceStatus(fn func(source string, up bool)) {
	p.status = fn
}

func (p *Provider) report(source string, up bool) {
	if p.status != nil {
		p.status(source, up)
	}
}

// Snapshot fetches all sources concurrently and assembles one bundle.
// It returns an error only when the context is done before assembly.
func (p *Provider) Snapshot(ctx context.Context) (*Snapshot, error) {
	now := time.Now()
	snap := &Snapshot{
		Location: p.location,
		TakenAt:  now.UTC(),
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		quakes, err := p.seismic.FetchEarthquakes(ctx)
		p.report("usgs", err == nil && len(quakes) > 0)
		if err != nil || len(quakes) == 0 {
			if err != nil {
				log.Printf("envdata: earthquake fetch failed, simulating: %v", err)
			}
			quakes = SimulatedEarthquakes(now)
		}
		snap.Earthquakes = quakes
	}()

	go func() {
		defer wg.Done()
		volcanoes, err := p.volcano.FetchVolcanoes(ctx)
		p.report("eonet", err == nil && len(volcanoes) > 0)
		if err != nil || len(volcanoes) == 0 {
			if err != nil {
				log.Printf("envdata: volcano fetch failed, simulating: %v", err)
			}
			volcanoes = SimulatedVolcanoes(now)
		}
		snap.Volcanoes = volcanoes
	}()

	go func() {
		defer wg.Done()
		w, err := p.weather.FetchCurrent(ctx, p.location.Latitude, p.location.Longitude)
		p.report("meteomatics", err == nil)
		if err != nil {
			if err != ErrNoCredentials {
				log.Printf("envdata: weather fetch failed, simulating: %v", err)
			}
			w = SimulatedWeather(now)
		}
		snap.Weather = *w
	}()

	go func() {
		defer wg.Done()
		pollutants, _, _, err := p.air.FetchLatest(ctx)
		p.report("openaq", err == nil && len(pollutants) > 0)
		if err != nil || len(pollutants) == 0 {
			if err != nil {
				log.Printf("envdata: air quality fetch failed, simulating: %v", err)
			}
			pollutants = SimulatedPollutants(now)
		}
		snap.Pollutants = pollutants
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Forecast proxies the weather source, falling back to simulation.
func (p *Provider) Forecast(ctx context.Context, days int) []ForecastDay {
	out, err := p.weather.FetchForecast(ctx, p.location.Latitude, p.location.Longitude, days)
	if err != nil || len(out) == 0 {
		if err != nil && err != ErrNoCredentials {
			log.Printf("envdata: forecast fetch failed, simulating: %v", err)
		}
		out = SimulatedForecast(time.Now(), days)
	}
	return out
}

// AirDetail returns stations and heatmap points alongside the averages.
// With OpenAQ down the heatmap is seeded from the tracked cities so the
// map never renders empty.
func (p *Provider) AirDetail(ctx context.Context) (map[string]float64, []Station, []AirPoint) {
	pollutants, stations, points, err := p.air.FetchLatest(ctx)
	if err != nil || len(pollutants) == 0 {
		if err != nil {
			log.Printf("envdata: air quality fetch failed, simulating: %v", err)
		}
		now := time.Now()
		pollutants = SimulatedPollutants(now)
		stations = SimulatedStations(now)
		points = SimulatedHeatmap()
	}
	return pollutants, stations, points
}

// WindGrid returns the regional wind field, simulated when no source is
// attached or the source comes back empty.
func (p *Provider) WindGrid(ctx context.Context) []WindVector {
	if p.wind != nil {
		out, err := p.wind.FetchWindGrid(ctx)
		p.report("power", err == nil && len(out) > 0)
		if err != nil {
			log.Printf("envdata: wind grid fetch failed, simulating: %v", err)
		}
		if len(out) > 0 {
			return out
		}
	}
	return SimulatedWindGrid(GuatemalaBBox, 3)
}
