package envdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// BBox is [minLon, minLat, maxLon, maxLat].
type BBox [4]float64

// GuatemalaBBox bounds the monitored region.
var GuatemalaBBox = BBox{-92.3, 13.5, -88.0, 17.8}

func (b BBox) Contains(lon, lat float64) bool {
	return b[0] <= lon && lon <= b[2] && b[1] <= lat && lat <= b[3]
}

// NewHTTPClient builds the retrying client shared by all upstream
// fetchers. Retries are silent; upstream flakiness is expected.
func NewHTTPClient(timeout time.Duration) *http.Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = 3
	c := rc.StandardClient()
	c.Timeout = timeout
	return c
}

func fetchJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
