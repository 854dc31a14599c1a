package envdata

import (
	"context"
	"math"
	"net/http"
	"time"
)

const defaultUSGSFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_day.geojson"

// USGSClient reads the USGS all-day GeoJSON feed and keeps only the
// events inside the configured region.
type USGSClient struct {
	client  *http.Client
	feedURL string
	bbox    BBox
}

func NewUSGSClient(client *http.Client, feedURL string, bbox BBox) *USGSClient {
	if feedURL == "" {
		feedURL = defaultUSGSFeedURL
	}
	return &USGSClient{client: client, feedURL: feedURL, bbox: bbox}
}

type usgsFeed struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // lon, lat, depth
		} `json:"geometry"`
		Properties struct {
			Mag   *float64 `json:"mag"`
			Place string   `json:"place"`
			Time  int64    `json:"time"` // epoch millis
		} `json:"properties"`
	} `json:"features"`
}

func (c *USGSClient) FetchEarthquakes(ctx context.Context) ([]SeismicEvent, error) {
	var feed usgsFeed
	if err := fetchJSON(ctx, c.client, c.feedURL, nil, &feed); err != nil {
		return nil, err
	}

	var out []SeismicEvent
	for _, f := range feed.Features {
		if len(f.Geometry.Coordinates) < 3 {
			continue
		}
		lon, lat, depth := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1], f.Geometry.Coordinates[2]
		if !c.bbox.Contains(lon, lat) {
			continue
		}
		mag := 0.0
		if f.Properties.Mag != nil {
			mag = *f.Properties.Mag
		}
		place := f.Properties.Place
		if place == "" {
			place = "No description"
		}
		out = append(out, SeismicEvent{
			Magnitude: math.Round(mag*10) / 10,
			DepthKM:   math.Round(depth*10) / 10,
			Place:     place,
			Latitude:  lat,
			Longitude: lon,
			Time:      time.UnixMilli(f.Properties.Time).UTC(),
			Source:    "USGS",
		})
	}
	return out, nil
}
