package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotfolio/errutil"
)

func readResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := io.ReadAll(resp.Body)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, context.DeadlineExceeded
		default:
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to read response body: %v", err)).Append(flawP)
		}
	}
	if len(respBody) == 0 {
		return nil, io.EOF
	}
	return respBody, nil
}

func ReadResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := readResponseBody(ctx, resp)
	if nil != err {
		if errors.Is(err, io.EOF) {
			return nil, flaw.From(errors.New("unexpected empty response body"))
		}
		return nil, err
	}
	return respBody, nil
}

// ReadOptionalResponseBody is like ReadResponseBody but an empty body is
// returned as a nil slice instead of an error.
func ReadOptionalResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := readResponseBody(ctx, resp)
	if nil != err {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return respBody, nil
}

const unparsableErrorMessage = "Failed to parse error response"

// ErrorMessage extracts a human readable message from a Spotify error body.
// Web API errors look like {"error":{"status":429,"message":"..."}} while the
// accounts service answers with {"error":"invalid_grant","error_description":"..."}.
func ErrorMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return unparsableErrorMessage
	}

	switch errKey := gjson.GetBytes(body, "error"); errKey.Type { //nolint:exhaustive
	case gjson.JSON:
		if msg := errKey.Get("message"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
	case gjson.String:
		if desc := gjson.GetBytes(body, "error_description"); desc.Type == gjson.String && desc.Str != "" {
			return desc.Str
		}
		if errKey.Str != "" {
			return errKey.Str
		}
	}

	if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String && msg.Str != "" {
		return msg.Str
	}
	return unparsableErrorMessage
}

// ErrorBody returns body as raw JSON when it is valid JSON, or as a JSON object
// carrying the parse failure message otherwise, so it can always be embedded
// into a structured log record.
func ErrorBody(body []byte) []byte {
	if len(body) > 0 && gjson.ValidBytes(body) {
		return body
	}
	return []byte(`{"message":"` + unparsableErrorMessage + `"}`)
}

// ErrorMessageOr is like ErrorMessage but returns fallback when body is valid
// JSON carrying no message.
func ErrorMessageOr(body []byte, fallback string) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return unparsableErrorMessage
	}
	if msg := ErrorMessage(body); msg != unparsableErrorMessage {
		return msg
	}
	return fallback
}
