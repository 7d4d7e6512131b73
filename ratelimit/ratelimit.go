package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const retryAfterHeader = "Retry-After"

// RetryAfter returns the raw Retry-After header value of resp, if any.
func RetryAfter(resp *http.Response) (string, bool) {
	v := strings.TrimSpace(resp.Header.Get(retryAfterHeader))
	return v, v != ""
}

// RetryAfterDuration interprets a Retry-After value, which is either a number
// of seconds or an HTTP date relative to now.
func RetryAfterDuration(v string, now time.Time) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); nil == err {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); nil == err {
		if d := t.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}
