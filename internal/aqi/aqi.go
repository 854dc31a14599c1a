// Package aqi converts PM2.5 concentrations to the US EPA Air Quality Index.
package aqi

import "math"

// EPA PM2.5 breakpoints (µg/m³ -> index range).
type breakpoint struct {
	cLow, cHigh float64
	iLow, iHigh float64
}

var breakpoints = []breakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// FromPM25 maps a PM2.5 concentration to an AQI in [0,500].
// Concentrations above the top breakpoint saturate at 500.
// Inputs in the small gaps between published rows (e.g. 12.0 < c < 12.1)
// clamp into the next row so the result stays monotonic.
// Negative input is a caller bug; behavior is undefined.
func FromPM25(pm25 float64) int {
	for _, bp := range breakpoints {
		if pm25 <= bp.cHigh {
			ratio := (pm25 - bp.cLow) / (bp.cHigh - bp.cLow)
			if ratio < 0 {
				ratio = 0
			}
			return int(math.Round(bp.iLow + ratio*(bp.iHigh-bp.iLow)))
		}
	}
	return 500
}

// CategoryInfo describes an AQI band for display.
type CategoryInfo struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Level    string `json:"level"`
}

// Category returns the display band for an AQI value.
func Category(aqi int) CategoryInfo {
	switch {
	case aqi <= 50:
		return CategoryInfo{Category: "Good", Color: "green", Level: "low"}
	case aqi <= 100:
		return CategoryInfo{Category: "Moderate", Color: "yellow", Level: "moderate"}
	case aqi <= 150:
		return CategoryInfo{Category: "Unhealthy for Sensitive Groups", Color: "orange", Level: "high"}
	case aqi <= 200:
		return CategoryInfo{Category: "Unhealthy", Color: "red", Level: "very_high"}
	default:
		return CategoryInfo{Category: "Very Unhealthy", Color: "purple", Level: "severe"}
	}
}
