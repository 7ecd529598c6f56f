package broadcast

import (
	"errors"
	"strings"
)

// Segment selects the audience of a broadcast. Valid forms: all,
// active_subs, no_active_subs, service:<digits>.
type Segment string

const (
	SegmentAll          Segment = "all"
	SegmentActiveSubs   Segment = "active_subs"
	SegmentNoActiveSubs Segment = "no_active_subs"

	servicePrefix = "service:"
)

var ErrInvalidSegment = errors.New("broadcast: invalid segment")

func ParseSegment(raw string) (Segment, error) {
	trimmed := strings.TrimSpace(raw)

	switch Segment(trimmed) {
	case SegmentAll, SegmentActiveSubs, SegmentNoActiveSubs:
		return Segment(trimmed), nil
	}

	if id, ok := strings.CutPrefix(trimmed, servicePrefix); ok && isDigits(id) {
		return Segment(trimmed), nil
	}

	return "", ErrInvalidSegment
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s Segment) String() string {
	return string(s)
}
