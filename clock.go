package pushover

import (
	"net/http"
	"time"
)

// timeToEpoch converts a point in time to the epoch-seconds representation
// the API uses on the wire.
func timeToEpoch(t time.Time) int64 {
	return t.Unix()
}

// epochToTime converts API epoch seconds to a UTC point in time.
func epochToTime(epoch int64) time.Time {
	return time.Unix(epoch, 0).UTC()
}

// parseHTTPDate parses an HTTP Date header value to a UTC point in time.
func parseHTTPDate(value string) (time.Time, error) {
	t, err := http.ParseTime(value)
	if err != nil {
		return time.Time{}, err
	}

	return t.UTC(), nil
}
