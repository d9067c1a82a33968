package telegram

import "strings"

// transientMarkers are Bot API replies that carry no actionable failure:
// re-sending identical content or answering an expired callback.
var transientMarkers = []string{
	"message is not modified",
	"query is too old",
	"query id is invalid",
}

// IsTransient reports whether err is a Bot API error that should be
// acknowledged and dropped instead of propagated.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
