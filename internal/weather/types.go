package weather

import "time"

// Coordinates is a WGS84 point, rounded to four decimal places so that
// values survive a round trip through rendered message text.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Wind holds wind observations; direction and gust are not reported by
// the provider for every sample.
type Wind struct {
	Speed float64  `json:"speed"`
	Deg   *float64 `json:"deg,omitempty"`
	Gust  *float64 `json:"gust,omitempty"`
}

// Sample is one instant-in-time observation. Immutable once fetched.
type Sample struct {
	Time           time.Time `json:"time"` // UTC instant
	TimezoneOffset int       `json:"tz"`   // seconds east of UTC at the city
	Temp           float64   `json:"temp"`
	FeelsLike      float64   `json:"feels_like"`
	Humidity       int       `json:"humidity"`
	Pressure       int       `json:"pressure"`
	Visibility     *int      `json:"visibility,omitempty"`
	Wind           Wind      `json:"wind"`
	Clouds         int       `json:"clouds"`
	PrecipProb     float64   `json:"pop"`
	Rain           *float64  `json:"rain,omitempty"`
	Snow           *float64  `json:"snow,omitempty"`
	Description    string    `json:"description"`
}

// Local returns the sample instant in the city's local time.
func (s Sample) Local() time.Time {
	return s.Time.In(time.FixedZone("", s.TimezoneOffset))
}

// Candidate is one geocoding result for a free-text city query.
type Candidate struct {
	Name    string      `json:"name"`
	Country string      `json:"country"`
	State   string      `json:"state,omitempty"`
	Coords  Coordinates `json:"coords"`
}

// Current is the current-conditions result for one city.
type Current struct {
	City           string
	Country        string
	Coords         Coordinates
	TimezoneOffset int
	Sample         Sample
}

// Forecast is the raw multi-day series for one city, one sample every
// three hours, sorted by timestamp ascending by the provider.
type Forecast struct {
	City           string
	Country        string
	Coords         Coordinates
	TimezoneOffset int
	Samples        []Sample
}
