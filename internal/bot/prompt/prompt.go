// Package prompt owns the machine-readable header embedded in the
// first line of every forced-reply prompt the bot sends. A later reply
// is routed by decoding the header of the message it replies to, never
// by conversation turn order. Decoding fails closed: anything that is
// not an exact header match means "not one of our prompts".
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/weatherhelper/weatherbot/internal/weather"
)

// Kind identifies which subscription-setup step a prompt belongs to.
type Kind int

const (
	// KindAddCity asks the user to reply with a city name.
	KindAddCity Kind = iota
	// KindAddTime asks the user to reply with a notification time; its
	// header carries the resolved coordinates, the only channel that
	// carries them to the second step.
	KindAddTime
)

const (
	version = 1

	tagAddCity = "AddCity"
	tagAddTime = "AddTime"
)

// Prompt is a decoded forced-reply header.
type Prompt struct {
	Kind   Kind
	Coords weather.Coordinates // set for KindAddTime only
}

// Header renders the machine-readable first line.
func (p Prompt) Header() string {
	switch p.Kind {
	case KindAddTime:
		return fmt.Sprintf("%s/%d %.4f %.4f", tagAddTime, version, p.Coords.Lat, p.Coords.Lon)
	default:
		return fmt.Sprintf("%s/%d", tagAddCity, version)
	}
}

// Compose builds the full prompt text: header line, then the localized
// human-readable body.
func Compose(p Prompt, body string) string {
	return p.Header() + "\n" + body
}

// DecodeHeader parses the first line of a prompt message. ok is false
// for anything that is not a well-formed header of a supported version.
func DecodeHeader(text string) (Prompt, bool) {
	line, _, _ := strings.Cut(text, "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Prompt{}, false
	}

	tag, ver, found := strings.Cut(fields[0], "/")
	if !found {
		return Prompt{}, false
	}
	if v, err := strconv.Atoi(ver); err != nil || v != version {
		return Prompt{}, false
	}

	switch tag {
	case tagAddCity:
		if len(fields) != 1 {
			return Prompt{}, false
		}
		return Prompt{Kind: KindAddCity}, true
	case tagAddTime:
		if len(fields) != 3 {
			return Prompt{}, false
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Prompt{}, false
		}
		lon, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Prompt{}, false
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return Prompt{}, false
		}
		return Prompt{Kind: KindAddTime, Coords: weather.Coordinates{Lat: lat, Lon: lon}}, true
	default:
		return Prompt{}, false
	}
}
