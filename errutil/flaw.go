package errutil

import (
	"errors"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/xeptore/flaw/v8"
)

func HTTPResponseFlawPayload(res *http.Response) flaw.P {
	return flaw.P{
		"status":         res.Status,
		"status_code":    res.StatusCode,
		"content_length": res.ContentLength,
		"proto":          res.Proto,
		"headers":        headersPayload(res.Header),
	}
}

// HTTPRequestFlawPayload describes req without leaking its credentials. The
// Authorization header keeps only its scheme.
func HTTPRequestFlawPayload(req *http.Request) flaw.P {
	headers := req.Header.Clone()
	if v := headers.Get("Authorization"); v != "" {
		scheme, _, _ := strings.Cut(v, " ")
		headers.Set("Authorization", scheme+" [REDACTED]")
	}
	return flaw.P{
		"method":  req.Method,
		"url":     req.URL.Redacted(),
		"headers": headersPayload(headers),
	}
}

func headersPayload(h http.Header) flaw.P {
	return flaw.P(lo.MapEntries(h, func(k string, v []string) (string, any) { return k, v }))
}

func IsFlaw(err error) bool {
	return errors.As(err, new(*flaw.Flaw))
}
