package envdata

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const defaultPOWERURL = "https://power.larc.nasa.gov/api/temporal/hourly/point"

// POWERClient samples NASA POWER hourly wind at evenly spaced grid
// nodes over the bbox. POWER is a point API, so each node is one
// request.
type POWERClient struct {
	client  *http.Client
	baseURL string
	bbox    BBox
	grid    int
}

func NewPOWERClient(client *http.Client, baseURL string, bbox BBox, grid int) *POWERClient {
	if baseURL == "" {
		baseURL = defaultPOWERURL
	}
	if grid <= 1 {
		grid = 3
	}
	return &POWERClient{client: client, baseURL: baseURL, bbox: bbox, grid: grid}
}

type powerResponse struct {
	Properties struct {
		Parameter struct {
			WS10M map[string]float64 `json:"WS10M"`
			WD10M map[string]float64 `json:"WD10M"`
		} `json:"parameter"`
	} `json:"properties"`
}

// FetchWindGrid reads the newest WS10M/WD10M hour for every grid node.
// Nodes that fail or carry the POWER fill value (-999) are skipped; a
// partial grid is still useful to the map.
func (c *POWERClient) FetchWindGrid(ctx context.Context) ([]WindVector, error) {
	day := time.Now().UTC().Format("20060102")
	out := make([]WindVector, 0, c.grid*c.grid)

	for i := 0; i < c.grid; i++ {
		lat := c.bbox[1] + (c.bbox[3]-c.bbox[1])*float64(i)/float64(c.grid-1)
		for j := 0; j < c.grid; j++ {
			lon := c.bbox[0] + (c.bbox[2]-c.bbox[0])*float64(j)/float64(c.grid-1)
			url := fmt.Sprintf("%s?parameters=WS10M,WD10M&community=RE&longitude=%.4f&latitude=%.4f&format=JSON&start=%s&end=%s",
				c.baseURL, lon, lat, day, day)

			var resp powerResponse
			if err := fetchJSON(ctx, c.client, url, nil, &resp); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				continue
			}

			hour := latestHour(resp.Properties.Parameter.WS10M)
			if hour == "" {
				continue
			}
			speed := resp.Properties.Parameter.WS10M[hour]
			if speed == -999 {
				continue
			}
			out = append(out, WindVector{
				Latitude:  lat,
				Longitude: lon,
				SpeedMS:   speed,
				Direction: resp.Properties.Parameter.WD10M[hour],
				Source:    "NASA POWER",
			})
		}
	}
	return out, nil
}

// latestHour picks the newest series stamp. POWER keys hours as
// YYYYMMDDHH, so lexical order is chronological.
func latestHour(series map[string]float64) string {
	var latest string
	for k := range series {
		if k > latest {
			latest = k
		}
	}
	return latest
}
