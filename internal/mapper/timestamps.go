package mapper

import (
	"fmt"
	"time"
)

// timestampLayouts are the two timestamp shapes the portal emits, with and
// without fractional seconds.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
}

// ParseTimestamp parses a detail-record timestamp, trying each known layout.
func ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q matches neither %q nor %q", raw, timestampLayouts[0], timestampLayouts[1])
}

// TimestampUnix is a best-effort conversion to unix seconds for metric
// emission; zero means unparseable or empty.
func TimestampUnix(raw string) int64 {
	if raw == "" {
		return 0
	}
	t, err := ParseTimestamp(raw)
	if err != nil {
		return 0
	}
	return t.Unix()
}
