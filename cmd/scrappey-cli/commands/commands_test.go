package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"scrappey-go/cmd/scrappey-cli/globals"
	"scrappey-go/internal/components/telemetry"
	"scrappey-go/lib/resultstore"
	"scrappey-go/lib/scrappey"
	"scrappey-go/lib/testutil"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) lookupEnv {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	file := Config{ApiKey: "file-key", BaseUrl: "https://file.example", RequestsPerSecond: 2, Db: "history.db"}

	config, err := resolveConfig(file, env(nil), Config{})
	require.NoError(t, err)
	require.Equal(t, "file-key", config.ApiKey)
	require.Equal(t, "https://file.example", config.BaseUrl)
	require.Equal(t, 300, config.TimeoutSeconds)

	config, err = resolveConfig(file, env(map[string]string{envApiKey: "env-key"}), Config{})
	require.NoError(t, err)
	require.Equal(t, "env-key", config.ApiKey)

	config, err = resolveConfig(
		file,
		env(map[string]string{envApiKey: "env-key", envBaseUrl: "https://env.example"}),
		Config{ApiKey: "flag-key", TimeoutSeconds: 10},
	)
	require.NoError(t, err)
	require.Equal(t, "flag-key", config.ApiKey)
	require.Equal(t, "https://env.example", config.BaseUrl)
	require.Equal(t, 10, config.TimeoutSeconds)
	require.Equal(t, float64(2), config.RequestsPerSecond)
	require.Equal(t, "history.db", config.Db)

	config, err = resolveConfig(Config{}, env(nil), Config{})
	require.NoError(t, err)
	require.Equal(t, scrappey.DefaultBaseUrl, config.BaseUrl)
	require.Equal(t, scrappey.DefaultTimeout, config.Timeout())
}

func TestReadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrappey.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		api_key: "k",
		timeout_seconds: 60,
		telemetry: {otlp: {traces: {http_endpoint: "localhost:4318"}}},
	}`), 0600))

	config, err := readConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, "k", config.ApiKey)
	require.Equal(t, 60, config.TimeoutSeconds)
	require.True(t, config.Telemetry.Otlp.Traces.Enabled())

	_, err = readConfigFile(filepath.Join(t.TempDir(), "missing.json5"))
	require.Error(t, err)
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"Accept-Language: en-US", "X-Token:abc:def"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"accept-language": "en-US", "x-token": "abc:def"}, headers)

	headers, err = parseHeaders(nil)
	require.NoError(t, err)
	require.Nil(t, headers)

	_, err = parseHeaders([]string{"no separator"})
	require.Error(t, err)
}

func TestParsePassthrough(t *testing.T) {
	extra, err := parsePassthrough([]string{
		"newFlag=true",
		"limit=5",
		"name=plain text",
		`nested={"a":[1,"b"]}`,
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"newFlag": true,
		"limit":   float64(5),
		"name":    "plain text",
		"nested":  map[string]any{"a": []any{float64(1), "b"}},
	}, extra)

	_, err = parsePassthrough([]string{"=value"})
	require.Error(t, err)
}

func TestRequestFlagsOptions(t *testing.T) {
	actionsPath := filepath.Join(t.TempDir(), "actions.json5")
	require.NoError(t, os.WriteFile(actionsPath, []byte(`[{type: "click", cssSelector: "#go"}]`), 0600))

	flags := &requestFlags{
		headers:      []string{"X-A: 1"},
		actionsFile:  actionsPath,
		passthrough:  []string{"cloudflareBypass=false", "brandNew=1"},
		proxyCountry: "Germany",
		cloudflare:   true,
		remoteMs:     30000,
	}
	opts, err := flags.options()
	require.NoError(t, err)

	encoded, err := json.Marshal(scrappey.Get("https://example.com", opts))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"cmd": "request.get",
		"url": "https://example.com",
		"customHeaders": {"x-a": "1"},
		"proxyCountry": "Germany",
		"cloudflareBypass": true,
		"timeout": 30000,
		"brandNew": 1,
		"browserActions": [{"type": "click", "cssSelector": "#go"}]
	}`, string(encoded))
}

func TestReadActions(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "list.json5")
	require.NoError(t, os.WriteFile(listPath, []byte(`[
		// wait for the page first
		{type: "wait_for_load_state", waitForLoadState: "networkidle"},
		{
			type: "while",
			condition: "document.querySelector('.load-more') !== null",
			maxAttempts: 5,
			then: [
				{type: "click", cssSelector: ".load-more"},
				{type: "wait", wait: 1000},
			],
		},
	]`), 0600))

	actions, err := readActions(listPath)
	require.NoError(t, err)
	expected := []scrappey.Action{
		scrappey.WaitForLoadState(scrappey.LoadStateNetworkIdle),
		scrappey.While("document.querySelector('.load-more') !== null", 5,
			scrappey.Click(".load-more"),
			scrappey.Wait(1000),
		),
	}
	if diff := cmp.Diff(expected, actions); diff != "" {
		t.Fatalf("unexpected actions (-want +got):\n%s", diff)
	}

	objectPath := filepath.Join(dir, "object.json5")
	require.NoError(t, os.WriteFile(objectPath, []byte(`{browserActions: [{type: "goto", url: "https://example.com"}]}`), 0600))
	actions, err = readActions(objectPath)
	require.NoError(t, err)
	require.Equal(t, []scrappey.Action{scrappey.Goto("https://example.com")}, actions)
}

func TestPrintFragments(t *testing.T) {
	var out bytes.Buffer
	printFragments(&out, scrappey.Response{
		Data:    "success",
		Session: "s-1",
		Solution: scrappey.Solution{
			Verified:         true,
			StatusCode:       200,
			InnerText:        "Example\n\nDomain",
			JavascriptReturn: []any{"Example Domain", []any{"https://iana.org"}},
		},
	})
	require.Equal(t, strings.Join([]string{
		"data: success",
		"status: 200",
		"verified: true",
		"session: s-1",
		"text: Example Domain",
		`javascript[0]: "Example Domain"`,
		`javascript[1]: ["https://iana.org"]`,
		"",
	}, "\n"), out.String())
}

func TestPrintResponseSelect(t *testing.T) {
	var out bytes.Buffer
	res := scrappey.Response{Solution: scrappey.Solution{Response: "<ul><li>a</li><li> b </li></ul>"}}
	err := printResponse(context.Background(), &out, res, outputFlags{selector: "li"})
	require.NoError(t, err)
	require.Equal(t, "a\nb\n", out.String())
}

func TestTraceActions(t *testing.T) {
	var out bytes.Buffer
	err := traceActions(context.Background(), &out, workflowActions, []string{"document.querySelector('.load-more') !== null"}, 2)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	require.Contains(t, lines[0], "[0]")
	require.Contains(t, lines[1], "[1].or[0]")
	require.Contains(t, lines[2], "click .load-more")
	require.Contains(t, lines[3], "wait 1000ms")

	out.Reset()
	err = traceActions(context.Background(), &out, []scrappey.Action{{Type: scrappey.ActionWhile, Condition: "x"}}, nil, 0)
	require.Error(t, err)
}

func TestSelectDemoSteps(t *testing.T) {
	names := func(steps []demoStep) []string {
		out := []string{}
		for _, step := range steps {
			out = append(out, step.name)
		}
		return out
	}
	require.Equal(t, []string{"get", "post", "session", "actions", "extract", "screenshot", "workflow"}, names(selectDemoSteps(false, nil)))
	require.Len(t, selectDemoSteps(true, nil), len(demoSteps))
	require.Equal(t, []string{"session", "captcha"}, names(selectDemoSteps(false, []string{"captcha", "session"})))
}

// newHistoryContext returns a context carrying a client for `api` and an
// in-memory history store.
func newHistoryContext(t *testing.T, api *testutil.FakeApi) (context.Context, *resultstore.Store) {
	srv := testutil.NewFakeApi(t, api)
	client, err := scrappey.NewClient(scrappey.ClientOptions{
		ApiKey:    "k",
		BaseUrl:   srv.URL,
		Telemetry: &telemetry.Recorder{},
	})
	require.NoError(t, err)
	store, err := resultstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return globals.Set(context.Background(), &globals.Value{Client: client, Store: &store}), &store
}

func TestRunDemoRecordsHistory(t *testing.T) {
	api := &testutil.FakeApi{
		Default: `{"data":"success","session":"demo-session","solution":{"verified":true,"statusCode":200,"innerText":"{\"cookies\":{}}"}}`,
	}
	ctx, store := newHistoryContext(t, api)

	var out bytes.Buffer
	err := runDemo(ctx, &out, selectDemoSteps(false, nil))
	require.NoError(t, err)
	require.Contains(t, out.String(), "=== Complex Workflow ===")
	require.Contains(t, out.String(), "created session: demo-session")

	commands := api.Commands()
	require.Len(t, commands, 10)
	require.Equal(t, "sessions.create", commands[2]["cmd"])
	require.Equal(t, "demo-session", commands[3]["session"])
	require.Equal(t, "sessions.destroy", commands[5]["cmd"])

	exchanges, err := store.ListExchanges(ctx, 0)
	require.NoError(t, err)
	require.Len(t, exchanges, 10)

	tracked, err := store.TrackedSessions(ctx)
	require.NoError(t, err)
	require.Empty(t, tracked)
}

func TestDemoSessionDestroysSessionOnFailure(t *testing.T) {
	api := &testutil.FakeApi{
		Default:   `{"data":"success","session":"demo-session"}`,
		Responses: map[string]string{"request.get": "<html>bad gateway</html>"},
		Statuses:  map[string]int{"request.get": http.StatusBadGateway},
	}
	ctx, store := newHistoryContext(t, api)

	var out bytes.Buffer
	err := demoSession(ctx, &out)
	var transportErr *scrappey.TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
	require.Contains(t, out.String(), "session destroyed")

	cmds := []string{}
	for _, command := range api.Commands() {
		cmds = append(cmds, command["cmd"].(string))
	}
	require.Equal(t, []string{"sessions.create", "request.get", "sessions.destroy"}, cmds)
	require.Equal(t, "demo-session", api.Commands()[2]["session"])

	tracked, err := store.TrackedSessions(ctx)
	require.NoError(t, err)
	require.Empty(t, tracked)
}

func TestRecordKeepsNonJsonBody(t *testing.T) {
	api := &testutil.FakeApi{
		Default: "<html>bad gateway</html>",
		Status:  http.StatusBadGateway,
	}
	ctx, store := newHistoryContext(t, api)

	_, err := send(ctx, scrappey.Get("https://example.com", scrappey.Options{}))
	require.Error(t, err)

	exchanges, err := store.ListExchanges(ctx, 0)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	require.Equal(t, http.StatusBadGateway, exchanges[0].StatusCode)
	require.True(t, json.Valid(exchanges[0].Response))

	var body string
	require.NoError(t, json.Unmarshal(exchanges[0].Response, &body))
	require.Equal(t, "<html>bad gateway</html>", body)

	require.Equal(t, json.RawMessage(`{"a":1}`), historyBody([]byte(`{"a":1}`)))
}

func TestTimeoutSeconds(t *testing.T) {
	seconds, err := timeoutSeconds(90 * time.Second)
	require.NoError(t, err)
	require.Equal(t, 90, seconds)

	seconds, err = timeoutSeconds(1500 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 2, seconds)

	_, err = timeoutSeconds(500 * time.Millisecond)
	require.Error(t, err)
}
