package envdata

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const defaultEONETURL = "https://eonet.gsfc.nasa.gov/api/v3/events"

// EONETClient reads open volcano events from NASA EONET. The feed
// carries no activity grade, so every open event inside the region is
// reported as "activo"; the rule engine keys off that wording.
type EONETClient struct {
	client  *http.Client
	baseURL string
	bbox    BBox
	days    int
}

func NewEONETClient(client *http.Client, baseURL string, bbox BBox, days int) *EONETClient {
	if baseURL == "" {
		baseURL = defaultEONETURL
	}
	if days <= 0 {
		days = 14
	}
	return &EONETClient{client: client, baseURL: baseURL, bbox: bbox, days: days}
}

type eonetFeed struct {
	Events []struct {
		Title    string `json:"title"`
		Geometry []struct {
			Date        time.Time `json:"date"`
			Coordinates []float64 `json:"coordinates"` // lon, lat
		} `json:"geometry"`
	} `json:"events"`
}

func (c *EONETClient) FetchVolcanoes(ctx context.Context) ([]VolcanicStatus, error) {
	url := fmt.Sprintf("%s?days=%d&status=open&category=volcanoes", c.baseURL, c.days)

	var feed eonetFeed
	if err := fetchJSON(ctx, c.client, url, nil, &feed); err != nil {
		return nil, err
	}

	var out []VolcanicStatus
	for _, ev := range feed.Events {
		for _, g := range ev.Geometry {
			if len(g.Coordinates) != 2 {
				continue
			}
			lon, lat := g.Coordinates[0], g.Coordinates[1]
			if !c.bbox.Contains(lon, lat) {
				continue
			}
			name := ev.Title
			if name == "" {
				name = "Active volcano"
			}
			out = append(out, VolcanicStatus{
				Name:       name,
				Status:     "activo",
				Latitude:   lat,
				Longitude:  lon,
				LastUpdate: g.Date,
				Source:     "NASA EONET",
			})
			break
		}
	}
	return out, nil
}
