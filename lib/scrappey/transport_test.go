package scrappey

import (
	"context"
	"io"
	"net/http"
	"scrappey-go/internal/components/telemetry"
	"scrappey-go/lib/testutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransportGet(t *testing.T) {
	api := &testutil.FakeApi{
		Default: `{
			"data": "success",
			"solution": {
				"verified": true,
				"statusCode": 404,
				"response": "<p>missing</p>",
				"responseHeaders": {"x-served-by": "edge", "set-cookie": ["a=1", "b=2"]}
			}
		}`,
	}
	client := newTestClient(t, api, &telemetry.Recorder{})

	httpClient := NewHttpClient(client, Options{PremiumProxy: true})
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://example.com/page?q=1", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("Cookie", "session=xyz")

	res, err := httpClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, "edge", res.Header.Get("x-served-by"))
	require.Equal(t, []string{"a=1", "b=2"}, res.Header.Values("set-cookie"))
	require.Equal(t, "text/html; charset=utf-8", res.Header.Get("content-type"))
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, "<p>missing</p>", string(body))

	commands := api.Commands()
	require.Len(t, commands, 1)
	require.Equal(t, map[string]any{
		"cmd":           "request.get",
		"url":           "https://example.com/page?q=1",
		"premiumProxy":  true,
		"cookies":       "session=xyz",
		"customHeaders": map[string]any{"accept-language": "en"},
	}, commands[0])
}

func TestTransportPostInSession(t *testing.T) {
	api := &testutil.FakeApi{
		Default: `{"data":"success","solution":{"verified":true,"innerText":"{\"ok\":true}"}}`,
	}
	client := newTestClient(t, api, &telemetry.Recorder{})

	transport := NewTransport(client, Options{})
	transport.Session = "s-9"
	httpClient := &http.Client{Transport: transport}

	res, err := httpClient.Post("https://example.com/api", "application/x-www-form-urlencoded", strings.NewReader("a=1&b=2"))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("content-type"))
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))

	sent := api.Commands()[0]
	require.Equal(t, "request.post", sent["cmd"])
	require.Equal(t, "a=1&b=2", sent["postData"])
	require.Equal(t, "s-9", sent["session"])
	require.Equal(t, map[string]any{"content-type": "application/x-www-form-urlencoded"}, sent["customHeaders"])
}

func TestTransportUnsupportedMethod(t *testing.T) {
	api := &testutil.FakeApi{Default: `{}`}
	client := newTestClient(t, api, &telemetry.Recorder{})

	req, err := http.NewRequest(http.MethodHead, "https://example.com", nil)
	require.NoError(t, err)
	_, err = NewTransport(client, Options{}).RoundTrip(req)
	require.ErrorContains(t, err, "unsupported method")
	require.Empty(t, api.Requests())
}

func TestTransportKeepsDefaultsUntouched(t *testing.T) {
	api := &testutil.FakeApi{Default: `{"data":"success"}`}
	client := newTestClient(t, api, &telemetry.Recorder{})

	defaults := Options{CustomHeaders: map[string]string{"x-default": "1"}}
	transport := NewTransport(client, defaults)

	req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
	require.NoError(t, err)
	req.Header.Set("X-Extra", "2")
	res, err := transport.RoundTrip(req)
	require.NoError(t, err)
	res.Body.Close()

	require.Equal(t, map[string]string{"x-default": "1"}, defaults.CustomHeaders)
	require.Equal(t, map[string]any{"x-default": "1", "x-extra": "2"}, api.Commands()[0]["customHeaders"])
}
