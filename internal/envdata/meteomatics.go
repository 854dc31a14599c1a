package envdata

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

const defaultMeteomaticsURL = "https://api.meteomatics.com"

var ErrNoCredentials = errors.New("meteomatics credentials not configured")

// MeteomaticsClient reads current conditions and daily forecasts. The
// API returns one series per requested parameter; values are converted
// to the units the rest of the system uses (km/h, km).
type MeteomaticsClient struct {
	client   *http.Client
	baseURL  string
	username string
	password string
}

func NewMeteomaticsClient(client *http.Client, baseURL, username, password string) *MeteomaticsClient {
	if baseURL == "" {
		baseURL = defaultMeteomaticsURL
	}
	return &MeteomaticsClient{client: client, baseURL: baseURL, username: username, password: password}
}

var currentParameters = []string{
	"t_2m:C",
	"relative_humidity_2m:p",
	"precip_1h:mm",
	"wind_speed_10m:ms",
	"wind_dir_10m:d",
	"msl_pressure:hPa",
	"weather_symbol_1h:idx",
	"uv:idx",
	"visibility:m",
}

var forecastParameters = []string{
	"t_2m:C",
	"precip_24h:mm",
	"wind_speed_10m:ms",
	"weather_symbol_24h:idx",
}

type meteomaticsResponse struct {
	Data []struct {
		Parameter   string `json:"parameter"`
		Coordinates []struct {
			Dates []struct {
				Date  time.Time `json:"date"`
				Value float64   `json:"value"`
			} `json:"dates"`
		} `json:"coordinates"`
	} `json:"data"`
}

func (c *MeteomaticsClient) authHeader() map[string]string {
	creds := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.password))
	return map[string]string{"Authorization": "Basic " + creds}
}

func (c *MeteomaticsClient) FetchCurrent(ctx context.Context, lat, lon float64) (*WeatherReading, error) {
	if c.username == "" || c.password == "" {
		return nil, ErrNoCredentials
	}

	url := fmt.Sprintf("%s/%s/%s/%.4f,%.4f/json",
		c.baseURL,
		time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		strings.Join(currentParameters, ","),
		lat, lon,
	)

	var resp meteomaticsResponse
	if err := fetchJSON(ctx, c.client, url, c.authHeader(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("meteomatics: empty response")
	}

	w := &WeatherReading{Source: "Meteomatics"}
	for _, series := range resp.Data {
		if len(series.Coordinates) == 0 || len(series.Coordinates[0].Dates) == 0 {
			continue
		}
		v := series.Coordinates[0].Dates[0].Value
		switch series.Parameter {
		case "t_2m:C":
			w.TemperatureC = round1(v)
		case "relative_humidity_2m:p":
			w.HumidityPct = math.Round(v)
		case "precip_1h:mm":
			w.PrecipitationMMH = round1(v)
		case "wind_speed_10m:ms":
			w.WindSpeedKMH = round1(v * 3.6)
		case "wind_dir_10m:d":
			w.WindDirectionDeg = math.Round(v)
		case "msl_pressure:hPa":
			w.PressureHPa = round1(v)
		case "weather_symbol_1h:idx":
			w.WeatherCode = int(v)
		case "uv:idx":
			w.UVIndex = round1(v)
		case "visibility:m":
			w.VisibilityKM = round1(v / 1000)
		}
	}
	return w, nil
}

func (c *MeteomaticsClient) FetchForecast(ctx context.Context, lat, lon float64, days int) ([]ForecastDay, error) {
	if c.username == "" || c.password == "" {
		return nil, ErrNoCredentials
	}

	start := time.Now().UTC()
	end := start.AddDate(0, 0, days)
	url := fmt.Sprintf("%s/%s--%s:P1D/%s/%.4f,%.4f/json",
		c.baseURL,
		start.Format("2006-01-02T15:04:05Z"),
		end.Format("2006-01-02T15:04:05Z"),
		strings.Join(forecastParameters, ","),
		lat, lon,
	)

	var resp meteomaticsResponse
	if err := fetchJSON(ctx, c.client, url, c.authHeader(), &resp); err != nil {
		return nil, err
	}

	// Pivot from per-parameter series to per-day records.
	byDate := map[time.Time]*ForecastDay{}
	var order []time.Time
	for _, series := range resp.Data {
		if len(series.Coordinates) == 0 {
			continue
		}
		for _, d := range series.Coordinates[0].Dates {
			day := d.Date.Truncate(24 * time.Hour)
			fd, ok := byDate[day]
			if !ok {
				fd = &ForecastDay{Date: day, Source: "Meteomatics"}
				byDate[day] = fd
				order = append(order, day)
			}
			switch series.Parameter {
			case "t_2m:C":
				fd.TemperatureC = round1(d.Value)
			case "precip_24h:mm":
				fd.PrecipitationMMH = round1(d.Value)
			case "wind_speed_10m:ms":
				fd.WindSpeedKMH = round1(d.Value * 3.6)
			case "weather_symbol_24h:idx":
				fd.WeatherCode = int(d.Value)
			}
		}
	}

	out := make([]ForecastDay, 0, len(order))
	for _, day := range order {
		out = append(out, *byDate[day])
	}
	return out, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
