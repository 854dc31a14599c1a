package envdata

// City is a monitored population center.
type City struct {
	Name       string  `json:"name"`
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lon"`
	Population int     `json:"population"`
}

// GuatemalaCities are the population centers reported by the cities
// endpoints. Order matters: clients show them as listed.
var GuatemalaCities = []City{
	{Name: "Ciudad de Guatemala", Latitude: 14.6349, Longitude: -90.5069, Population: 3000000},
	{Name: "Quetzaltenango", Latitude: 14.8333, Longitude: -91.5167, Population: 792530},
	{Name: "Escuintla", Latitude: 14.3000, Longitude: -90.7858, Population: 565000},
	{Name: "Antigua Guatemala", Latitude: 14.561, Longitude: -90.734, Population: 45000},
	{Name: "Huehuetenango", Latitude: 15.3167, Longitude: -91.4833, Population: 150000},
}
