package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
)

const (
	defaultAPIURL = "https://api.openweathermap.org/data/2.5"
	defaultGeoURL = "https://api.openweathermap.org/geo/1.0"

	geocodeLimit = 5
)

// Client talks to the OpenWeatherMap geocoding and weather APIs. Every
// call is bounded by the HTTP client timeout and guarded by a shared
// circuit breaker; a timed-out call surfaces as an upstream failure and
// is never retried here.
type Client struct {
	apiKey  string
	apiURL  string
	geoURL  string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:  apiKey,
		apiURL:  defaultAPIURL,
		geoURL:  defaultGeoURL,
		http:    &http.Client{Timeout: timeout},
		circuit: cb,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub
// server.
func NewClientWithBaseURL(apiKey string, timeout time.Duration, apiURL, geoURL string) *Client {
	c := NewClient(apiKey, timeout)
	c.apiURL = apiURL
	c.geoURL = geoURL
	return c
}

// Geocode resolves a free-text city name into up to five candidates,
// in provider order. An empty result is returned as an empty slice,
// not an error.
func (c *Client) Geocode(ctx context.Context, query string) ([]Candidate, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", fmt.Sprintf("%d", geocodeLimit))
	values.Set("appid", c.apiKey)

	var payload []struct {
		Name    string  `json:"name"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		Country string  `json:"country"`
		State   string  `json:"state"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/direct?%s", c.geoURL, values.Encode()), &payload); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(payload))
	for _, p := range payload {
		candidates = append(candidates, Candidate{
			Name:    p.Name,
			Country: p.Country,
			State:   p.State,
			Coords:  Coordinates{Lat: Round(p.Lat), Lon: Round(p.Lon)},
		})
	}
	return candidates, nil
}

// Current fetches the current conditions for the given coordinates.
func (c *Client) Current(ctx context.Context, coords Coordinates, lang string) (*Current, error) {
	var payload struct {
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Pressure  int     `json:"pressure"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Visibility *int `json:"visibility"`
		Wind       struct {
			Speed float64  `json:"speed"`
			Deg   *float64 `json:"deg"`
			Gust  *float64 `json:"gust"`
		} `json:"wind"`
		Clouds struct {
			All int `json:"all"`
		} `json:"clouds"`
		Rain *struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Snow *struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"snow"`
		Dt  int64 `json:"dt"`
		Sys struct {
			Country string `json:"country"`
		} `json:"sys"`
		Timezone int    `json:"timezone"`
		Name     string `json:"name"`
	}
	if err := c.getJSON(ctx, c.weatherURL("weather", coords, lang), &payload); err != nil {
		return nil, err
	}
	if len(payload.Weather) == 0 {
		return nil, apperrors.New(apperrors.KindUpstream, "current weather payload has no condition entry")
	}

	sample := Sample{
		Time:           time.Unix(payload.Dt, 0).UTC(),
		TimezoneOffset: payload.Timezone,
		Temp:           payload.Main.Temp,
		FeelsLike:      payload.Main.FeelsLike,
		Humidity:       payload.Main.Humidity,
		Pressure:       payload.Main.Pressure,
		Visibility:     payload.Visibility,
		Wind: Wind{
			Speed: payload.Wind.Speed,
			Deg:   payload.Wind.Deg,
			Gust:  payload.Wind.Gust,
		},
		Clouds:      payload.Clouds.All,
		Description: payload.Weather[0].Description,
	}
	if payload.Rain != nil {
		v := payload.Rain.OneH
		if v == 0 {
			v = payload.Rain.ThreeH
		}
		sample.Rain = &v
	}
	if payload.Snow != nil {
		v := payload.Snow.OneH
		if v == 0 {
			v = payload.Snow.ThreeH
		}
		sample.Snow = &v
	}

	return &Current{
		City:           payload.Name,
		Country:        payload.Sys.Country,
		Coords:         Coordinates{Lat: Round(payload.Coord.Lat), Lon: Round(payload.Coord.Lon)},
		TimezoneOffset: payload.Timezone,
		Sample:         sample,
	}, nil
}

// Forecast fetches the 5-day / 3-hour series for the given coordinates.
func (c *Client) Forecast(ctx context.Context, coords Coordinates, lang string) (*Forecast, error) {
	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp      float64 `json:"temp"`
				FeelsLike float64 `json:"feels_like"`
				Pressure  int     `json:"pressure"`
				Humidity  int     `json:"humidity"`
			} `json:"main"`
			Weather []struct {
				Description string `json:"description"`
			} `json:"weather"`
			Clouds struct {
				All int `json:"all"`
			} `json:"clouds"`
			Wind struct {
				Speed float64  `json:"speed"`
				Deg   *float64 `json:"deg"`
				Gust  *float64 `json:"gust"`
			} `json:"wind"`
			Visibility *int    `json:"visibility"`
			Pop        float64 `json:"pop"`
			Rain       *struct {
				ThreeH float64 `json:"3h"`
			} `json:"rain"`
			Snow *struct {
				ThreeH float64 `json:"3h"`
			} `json:"snow"`
		} `json:"list"`
		City struct {
			Name  string `json:"name"`
			Coord struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"coord"`
			Country  string `json:"country"`
			Timezone int    `json:"timezone"`
		} `json:"city"`
	}
	if err := c.getJSON(ctx, c.weatherURL("forecast", coords, lang), &payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, apperrors.New(apperrors.KindUpstream, "forecast payload has no samples")
	}

	samples := make([]Sample, 0, len(payload.List))
	for _, item := range payload.List {
		if len(item.Weather) == 0 {
			return nil, apperrors.New(apperrors.KindUpstream, "forecast sample has no condition entry")
		}
		sample := Sample{
			Time:           time.Unix(item.Dt, 0).UTC(),
			TimezoneOffset: payload.City.Timezone,
			Temp:           item.Main.Temp,
			FeelsLike:      item.Main.FeelsLike,
			Humidity:       item.Main.Humidity,
			Pressure:       item.Main.Pressure,
			Visibility:     item.Visibility,
			Wind: Wind{
				Speed: item.Wind.Speed,
				Deg:   item.Wind.Deg,
				Gust:  item.Wind.Gust,
			},
			Clouds:      item.Clouds.All,
			PrecipProb:  item.Pop,
			Description: item.Weather[0].Description,
		}
		if item.Rain != nil {
			v := item.Rain.ThreeH
			sample.Rain = &v
		}
		if item.Snow != nil {
			v := item.Snow.ThreeH
			sample.Snow = &v
		}
		samples = append(samples, sample)
	}

	return &Forecast{
		City:           payload.City.Name,
		Country:        payload.City.Country,
		Coords:         Coordinates{Lat: Round(payload.City.Coord.Lat), Lon: Round(payload.City.Coord.Lon)},
		TimezoneOffset: payload.City.Timezone,
		Samples:        samples,
	}, nil
}

func (c *Client) weatherURL(endpoint string, coords Coordinates, lang string) string {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", coords.Lat))
	values.Set("lon", fmt.Sprintf("%f", coords.Lon))
	values.Set("units", "metric")
	values.Set("appid", c.apiKey)
	if lang != "" {
		values.Set("lang", lang)
	}
	return fmt.Sprintf("%s/%s?%s", c.apiURL, endpoint, values.Encode())
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	_, err := c.circuit.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("malformed payload: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindUpstream, "openweathermap call failed")
	}
	return nil
}

// Round truncates a coordinate to four decimal places, the precision
// used when embedding coordinates in message text.
func Round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
