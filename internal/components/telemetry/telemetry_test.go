package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	scoped := NewScopedAPI("scrappey", NewScopedAPI("client", rec))

	scoped.ReportBroken("send", "boom")
	scoped.ReportWarning("decode")
	scoped.ReportCount("commands", 3)

	broken := rec.Reports(KindBroken)
	require.Len(t, broken, 1)
	require.Equal(t, "client: scrappey: send", broken[0].Id)
	require.Equal(t, []any{"boom"}, broken[0].Params)

	require.Equal(t, "client: scrappey: decode", rec.Reports(KindWarning)[0].Id)
	require.Equal(t, int64(3), rec.Reports(KindCount)[0].Count)
}

func TestInstrumentResty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec)

	_, err := client.R().
		SetContext(context.Background()).
		SetQueryParam("key", "secret").
		Get(srv.URL)
	require.NoError(t, err)

	debug := rec.Reports(KindDebug)
	require.Len(t, debug, 2)
	require.Equal(t, report_resty_request, debug[0].Id)
	require.Equal(t, srv.URL, debug[0].Params[2])
	require.NotContains(t, debug[0].Params[2], "secret")
	require.Equal(t, report_resty_response, debug[1].Id)
	require.Contains(t, debug[1].Params[2], "418")
}

func TestInstrumentRestyRedactsFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseUrl := srv.URL
	srv.Close()

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec)

	_, err := client.R().
		SetContext(context.Background()).
		SetQueryParam("key", "secret").
		Get(baseUrl)
	require.Error(t, err)

	broken := rec.Reports(KindBroken)
	require.Len(t, broken, 1)
	require.Equal(t, report_resty_response, broken[0].Id)
	require.NotContains(t, fmt.Sprint(broken[0].Params...), "secret")
	require.Contains(t, broken[0].Params[2], "key=REDACTED")
}
