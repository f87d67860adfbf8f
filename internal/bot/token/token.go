// Package token encodes and decodes the short callback-data strings
// carried by inline keyboard buttons. The token is the only payload
// Telegram returns on a button press, so it has to be self-contained.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
)

// Action identifies what a pressed button asks for.
type Action int

const (
	// ActionForecast requests the multi-day forecast for the city shown
	// in the message the button is attached to. Tag "F".
	ActionForecast Action = iota
	// ActionChooseCity selects a disambiguation candidate for a one-off
	// lookup. Tag "C:<i>".
	ActionChooseCity
	// ActionChooseCityForSub selects a candidate during subscription
	// setup. Tag "CS:<i>".
	ActionChooseCityForSub
	// ActionForecastPage navigates the cached forecast to page <i>.
	// Tag "FI:<i>".
	ActionForecastPage
	// ActionRemoveSub cancels the subscription described by the message
	// the button is attached to. Tag "RS".
	ActionRemoveSub
)

const (
	tagForecast     = "F"
	tagChoose       = "C"
	tagChooseSub    = "CS"
	tagForecastPage = "FI"
	tagRemoveSub    = "RS"
)

// ErrUnrecognized marks a token whose tag matches no known action.
// Stale buttons pressed after a restart land here and are silently
// ignored by the dispatcher.
var ErrUnrecognized = errors.New("token: unrecognized action tag")

// Token is a decoded callback payload. Index is meaningful only for
// the indexed actions (choose, choose-for-subscription, page).
type Token struct {
	Action Action
	Index  int
}

// Encode renders the token into its wire form.
func (t Token) Encode() string {
	switch t.Action {
	case ActionForecast:
		return tagForecast
	case ActionChooseCity:
		return fmt.Sprintf("%s:%d", tagChoose, t.Index)
	case ActionChooseCityForSub:
		return fmt.Sprintf("%s:%d", tagChooseSub, t.Index)
	case ActionForecastPage:
		return fmt.Sprintf("%s:%d", tagForecastPage, t.Index)
	case ActionRemoveSub:
		return tagRemoveSub
	}
	return ""
}

// Decode parses a callback payload. Unknown tags yield ErrUnrecognized;
// a recognized tag with a malformed or negative index yields a
// validation error (logged and reported generically, never a crash).
func Decode(data string) (Token, error) {
	parts := strings.Split(data, ":")

	switch parts[0] {
	case tagForecast:
		if len(parts) != 1 {
			return Token{}, ErrUnrecognized
		}
		return Token{Action: ActionForecast}, nil
	case tagRemoveSub:
		if len(parts) != 1 {
			return Token{}, ErrUnrecognized
		}
		return Token{Action: ActionRemoveSub}, nil
	case tagChoose, tagChooseSub, tagForecastPage:
		if len(parts) != 2 {
			return Token{}, apperrors.New(apperrors.KindValidation,
				fmt.Sprintf("token %q is missing its index", data))
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil || index < 0 {
			return Token{}, apperrors.New(apperrors.KindValidation,
				fmt.Sprintf("token %q has a malformed index", data))
		}
		action := ActionChooseCity
		switch parts[0] {
		case tagChooseSub:
			action = ActionChooseCityForSub
		case tagForecastPage:
			action = ActionForecastPage
		}
		return Token{Action: action, Index: index}, nil
	default:
		return Token{}, ErrUnrecognized
	}
}
