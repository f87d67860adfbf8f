// Package forecast regroups the provider's flat 3-hourly sample series
// into calendar-day pages, in the city's local time.
package forecast

import (
	"fmt"
	"time"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

// DayPage holds the samples of one local calendar day plus the city
// metadata all samples share. Pages partition the fetched series with
// no gaps or overlaps.
type DayPage struct {
	Date           string           `json:"date"` // "2006-01-02" in local time
	City           string           `json:"city"`
	Country        string           `json:"country"`
	Coords         weather.Coordinates `json:"coords"`
	TimezoneOffset int              `json:"tz"`
	Samples        []weather.Sample `json:"samples"`
}

const dateLayout = "2006-01-02"

// Bucket splits the forecast series into day pages. The series must be
// non-empty, sorted by timestamp ascending, and carry one timezone
// offset throughout; anything else is treated as a malformed provider
// payload and fails the whole fetch.
func Bucket(fc *weather.Forecast) ([]DayPage, error) {
	if err := validateSeries(fc); err != nil {
		return nil, err
	}

	newPage := func(first weather.Sample) DayPage {
		return DayPage{
			Date:           first.Local().Format(dateLayout),
			City:           fc.City,
			Country:        fc.Country,
			Coords:         fc.Coords,
			TimezoneOffset: fc.TimezoneOffset,
			Samples:        []weather.Sample{first},
		}
	}

	var pages []DayPage
	current := newPage(fc.Samples[0])
	for _, sample := range fc.Samples[1:] {
		date := sample.Local().Format(dateLayout)
		if date == current.Date {
			current.Samples = append(current.Samples, sample)
			continue
		}
		pages = append(pages, current)
		current = newPage(sample)
	}
	pages = append(pages, current)

	return pages, nil
}

func validateSeries(fc *weather.Forecast) error {
	if len(fc.Samples) == 0 {
		return apperrors.New(apperrors.KindUpstream, "forecast series is empty")
	}
	if fc.City == "" || fc.Country == "" {
		return apperrors.New(apperrors.KindUpstream, "forecast series has no city metadata")
	}
	if fc.Coords.Lat < -90 || fc.Coords.Lat > 90 || fc.Coords.Lon < -180 || fc.Coords.Lon > 180 {
		return apperrors.New(apperrors.KindUpstream, "forecast series has out-of-range coordinates")
	}

	var prev time.Time
	for i, sample := range fc.Samples {
		if sample.Description == "" {
			return apperrors.New(apperrors.KindUpstream,
				fmt.Sprintf("sample %d has no condition description", i))
		}
		if sample.TimezoneOffset != fc.TimezoneOffset {
			return apperrors.New(apperrors.KindUpstream,
				fmt.Sprintf("sample %d changes timezone offset mid-series", i))
		}
		if i > 0 && !sample.Time.After(prev) {
			return apperrors.New(apperrors.KindUpstream,
				fmt.Sprintf("sample %d is out of timestamp order", i))
		}
		prev = sample.Time
	}
	return nil
}
