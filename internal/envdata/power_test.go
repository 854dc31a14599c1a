package envdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const powerFixture = `{
	"properties": {
		"parameter": {
			"WS10M": {"2026090100": 2.0, "2026090112": 4.2},
			"WD10M": {"2026090100": 90, "2026090112": 180}
		}
	}
}`

func TestPOWERFetchWindGrid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("parameters") != "WS10M,WD10M" {
			t.Errorf("missing wind parameters: %s", r.URL.RawQuery)
		}
		w.Write([]byte(powerFixture))
	}))
	defer srv.Close()

	c := NewPOWERClient(srv.Client(), srv.URL, GuatemalaBBox, 2)
	out, err := c.FetchWindGrid(context.Background())
	if err != nil {
		t.Fatalf("FetchWindGrid failed: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 grid nodes, got %d", len(out))
	}
	for _, v := range out {
		// Newest hour wins, not the first map entry.
		if v.SpeedMS != 4.2 || v.Direction != 180 {
			t.Errorf("stale hour picked: %+v", v)
		}
		if v.Source != "NASA POWER" {
			t.Errorf("wrong source %q", v.Source)
		}
		if !GuatemalaBBox.Contains(v.Longitude, v.Latitude) {
			t.Errorf("node outside bbox: %+v", v)
		}
	}
}

func TestPOWERFetchWindGrid_FillValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"properties":{"parameter":{"WS10M":{"2026090112":-999},"WD10M":{"2026090112":-999}}}}`))
	}))
	defer srv.Close()

	c := NewPOWERClient(srv.Client(), srv.URL, GuatemalaBBox, 2)
	out, err := c.FetchWindGrid(context.Background())
	if err != nil {
		t.Fatalf("FetchWindGrid failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("fill-value nodes must be dropped, got %d", len(out))
	}
}

func TestWindGrid_SimulatedWithoutSource(t *testing.T) {
	p := NewProvider(Location{}, failingSeismic{}, failingVolcano{},
		NewMeteomaticsClient(http.DefaultClient, "", "", ""), failingAir{})

	out := p.WindGrid(context.Background())
	if len(out) != 9 {
		t.Fatalf("expected 3x3 simulated grid, got %d", len(out))
	}
	for _, v := range out {
		if v.Source != "simulated" {
			t.Errorf("wrong source %q", v.Source)
		}
		if v.SpeedMS < 2.5 || v.SpeedMS > 9.9 {
			t.Errorf("speed outside simulated band: %v", v.SpeedMS)
		}
	}
}
