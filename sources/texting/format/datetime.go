package format

import (
	"time"
)

const backendTimeLayout = time.RFC3339

// Date renders a backend timestamp for the user's language. Values the
// backend sends that fail to parse are shown verbatim rather than
// dropped.
func Date(value, lang string) string {
	parsed, err := time.Parse(backendTimeLayout, value)
	if err != nil {
		return value
	}

	if lang == "ru" {
		return parsed.Format("02.01.2006 15:04")
	}
	return parsed.Format("2006-01-02 15:04")
}

// MinutesUntil reports whole minutes from now until the given
// timestamp, clamped at zero. Used for "complete within N minutes"
// payment prompts.
func MinutesUntil(value string, now time.Time) int {
	parsed, err := time.Parse(backendTimeLayout, value)
	if err != nil {
		return 0
	}

	minutes := int(parsed.Sub(now).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}
