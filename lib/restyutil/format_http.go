package restyutil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// query parameters whose values are never written out
var redactedParams = []string{"key"}

const redacted = "REDACTED"

// RedactUrl renders a url with the values of credential query parameters replaced.
func RedactUrl(u *url.URL) string {
	if u == nil {
		return ""
	}
	query := u.Query()
	changed := false
	for _, name := range redactedParams {
		if query.Has(name) {
			query.Set(name, redacted)
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	copied := *u
	copied.RawQuery = query.Encode()
	return copied.String()
}

// RedactUrlString is RedactUrl for a url that has not been parsed yet, a url
// that does not parse is dropped entirely.
func RedactUrlString(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	return RedactUrl(u)
}

// RedactError rewrites the url carried by a *url.Error, net/http puts the
// full request url in the message of every failed exchange.
func RedactError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{
		Op:  urlErr.Op,
		URL: RedactUrlString(urlErr.URL),
		Err: urlErr.Err,
	}
}

// redactRequest returns a shallow copy of `req` whose url has its credentials
// replaced, it is only meant for reading attributes from.
func redactRequest(req *http.Request) *http.Request {
	if req == nil || req.URL == nil {
		return req
	}
	redactedUrl, err := url.Parse(RedactUrl(req.URL))
	if err != nil {
		return req
	}
	copied := *req
	copied.URL = redactedUrl
	return &copied
}

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out strings.Builder
	for _, k := range keys {
		for _, v := range headers[k] {
			out.WriteString(fmt.Sprintf("%s: %s\n", k, v))
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}

func formatRequestBody(req *http.Request) string {
	if req.GetBody == nil {
		return "<NO BODY AVAILABLE>"
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	readBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return string(readBody)
}

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: request body
// 5: response status
// 6: response headers in ("Key: Value" format)
// 7: response body
const messageInfoTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s

%s

%s`

func formatHttpMessage(res *resty.Response) string {
	raw := res.Request.RawRequest

	return fmt.Sprintf(
		messageInfoTemplate,

		res.Request.Method, RedactUrl(raw.URL),
		formatHeaders(raw.Header),
		formatRequestBody(raw),

		strconv.Itoa(res.StatusCode()),
		formatHeaders(res.Header()),
		res.String(),
	)
}
