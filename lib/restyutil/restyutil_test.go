package restyutil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.messages == nil {
		o.messages = map[string]string{}
	}
	o.messages[id] = contents
}

func TestRedactUrl(t *testing.T) {
	testCases := []struct {
		link     string
		expected string
	}{
		{
			link:     "https://publisher.scrappey.com/api/v1?key=abc123",
			expected: "https://publisher.scrappey.com/api/v1?key=REDACTED",
		},
		{
			link:     "https://publisher.scrappey.com/api/v1?a=1&key=abc123",
			expected: "https://publisher.scrappey.com/api/v1?a=1&key=REDACTED",
		},
		{
			link:     "https://example.com/path?a=1",
			expected: "https://example.com/path?a=1",
		},
	}

	for _, test := range testCases {
		u, err := url.Parse(test.link)
		require.NoError(t, err)
		require.Equal(t, test.expected, RedactUrl(u))
	}
	require.Equal(t, "", RedactUrl(nil))
}

func TestRedactError(t *testing.T) {
	err := RedactError(&url.Error{
		Op:  "Post",
		URL: "https://publisher.scrappey.com/api/v1?key=abc123",
		Err: context.DeadlineExceeded,
	})
	require.Equal(t, `Post "https://publisher.scrappey.com/api/v1?key=REDACTED": context deadline exceeded`, err.Error())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	plain := errors.New("boom")
	require.Equal(t, plain, RedactError(plain))
	require.Equal(t, redacted, RedactUrlString("http://[::1"))
}

func TestInstrumentClientWritesExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"data":"success"}`))
	}))
	defer srv.Close()

	out := &memoryOutput{}
	client := resty.New()
	InstrumentClient(client, nil, out)

	_, err := client.R().
		SetContext(context.Background()).
		SetQueryParam("key", "secret").
		SetHeader("content-type", "application/json").
		SetBody(`{"cmd":"request.get"}`).
		Post(srv.URL)
	require.NoError(t, err)

	require.Len(t, out.messages, 1)
	message := out.messages["1"]
	require.Contains(t, message, "key=REDACTED")
	require.NotContains(t, message, "secret")
	require.Contains(t, message, `{"cmd":"request.get"}`)
	require.Contains(t, message, `{"data":"success"}`)
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	out.Write("7", "contents")
	written, err := os.ReadFile(filepath.Join(dir, "7.txt"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(written))
}
