package envdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/aeroshieldgt/enviro-api/internal/aqi"
)

const defaultOpenAQURL = "https://api.openaq.org/v2"

// OpenAQClient reads recent station measurements. The /latest endpoint
// is queried by radius around the region center, then filtered to the
// bbox; OpenAQ's own bbox parameter misses some border stations.
type OpenAQClient struct {
	client  *http.Client
	baseURL string
	bbox    BBox
}

func NewOpenAQClient(client *http.Client, baseURL string, bbox BBox) *OpenAQClient {
	if baseURL == "" {
		baseURL = defaultOpenAQURL
	}
	return &OpenAQClient{client: client, baseURL: baseURL, bbox: bbox}
}

type openaqLatest struct {
	Results []struct {
		Location    string `json:"location"`
		City        string `json:"city"`
		Coordinates struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"coordinates"`
		Measurements []struct {
			Parameter   string    `json:"parameter"`
			Value       float64   `json:"value"`
			Unit        string    `json:"unit"`
			LastUpdated time.Time `json:"lastUpdated"`
		} `json:"measurements"`
	} `json:"results"`
}

// FetchLatest returns region-average pollutant concentrations, the
// contributing stations, and per-station samples for heatmaps.
func (c *OpenAQClient) FetchLatest(ctx context.Context) (map[string]float64, []Station, []AirPoint, error) {
	centerLat := (c.bbox[1] + c.bbox[3]) / 2
	centerLon := (c.bbox[0] + c.bbox[2]) / 2
	url := fmt.Sprintf("%s/latest?coordinates=%.4f,%.4f&radius=500000&limit=500&parameter=pm25&parameter=no2",
		c.baseURL, centerLat, centerLon)

	var resp openaqLatest
	if err := fetchJSON(ctx, c.client, url, nil, &resp); err != nil {
		return nil, nil, nil, err
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	var stations []Station
	var points []AirPoint

	for _, r := range resp.Results {
		lat, lon := r.Coordinates.Latitude, r.Coordinates.Longitude
		if !c.bbox.Contains(lon, lat) {
			continue
		}

		point := AirPoint{
			Latitude:  lat,
			Longitude: lon,
			Station:   r.Location,
			City:      r.City,
			Source:    "OpenAQ",
		}
		var lastUpdated time.Time
		for _, meas := range r.Measurements {
			name := strings.ToUpper(meas.Parameter)
			switch name {
			case "PM25":
				v := meas.Value
				point.PM25 = &v
			case "NO2":
				v := meas.Value
				point.NO2 = &v
			default:
				continue
			}
			sums[name] += meas.Value
			counts[name]++
			if meas.LastUpdated.After(lastUpdated) {
				lastUpdated = meas.LastUpdated
			}
		}
		if point.PM25 == nil && point.NO2 == nil {
			continue
		}

		// Heatmap weight: AQI normalized against the unhealthy band,
		// flat default when the station only reports NO2.
		point.Intensity = 0.4
		if point.PM25 != nil {
			index := aqi.FromPM25(*point.PM25)
			point.AQI = &index
			point.Intensity = math.Min(1.0, math.Max(0.05, float64(index)/200))
		}

		stations = append(stations, Station{
			Name:        r.Location,
			Latitude:    lat,
			Longitude:   lon,
			LastUpdated: lastUpdated,
			Source:      "OpenAQ",
		})
		points = append(points, point)
	}

	avgs := map[string]float64{}
	for name, sum := range sums {
		avgs[name] = sum / float64(counts[name])
	}
	return avgs, stations, points, nil
}
