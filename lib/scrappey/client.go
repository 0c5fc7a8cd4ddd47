package scrappey

import (
	"context"
	"encoding/json"
	"fmt"
	"scrappey-go/internal/components/telemetry"
	"scrappey-go/lib/restyutil"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseUrl = "https://publisher.scrappey.com/api/v1"
	DefaultTimeout = 5 * time.Minute
)

const (
	report_client_send = "client.send"
)

var tracer = otel.Tracer("scrappey-go/lib/scrappey")
var meter = otel.Meter("scrappey-go/lib/scrappey")
var commandCounter, _ = meter.Int64Counter(
	"scrappey.commands",
	metric.WithDescription("commands sent to the scrappey api"),
)
var commandDuration, _ = meter.Float64Histogram(
	"scrappey.command.duration",
	metric.WithUnit("s"),
)

type ClientOptions struct {
	ApiKey string
	// defaults to DefaultBaseUrl
	BaseUrl string
	// Timeout bounds every call, it defaults to DefaultTimeout.
	Timeout time.Duration
	// RequestsPerSecond limits how fast commands are sent, 0 means no limit.
	RequestsPerSecond float64
	// defaults to telemetry.SlogAPI
	Telemetry telemetry.API
	// DumpOutput receives every http exchange with the api key redacted, it can be nil.
	DumpOutput restyutil.InstrumentOutput
}

// Client sends commands to the scrappey api, it is safe for concurrent use.
type Client struct {
	http    *resty.Client
	tel     telemetry.API
	apiKey  string
	baseUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ApiKey == "" {
		return nil, ErrMissingApiKey
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}
	tel := telemetry.NewScopedAPI("scrappey", opts.Telemetry)

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("content-type", "application/json")

	if opts.RequestsPerSecond > 0 {
		// burst of 1 so commands are spread out evenly
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.InstrumentClient(httpClient, tracer, opts.DumpOutput)

	return &Client{
		http:    httpClient,
		tel:     tel,
		apiKey:  opts.ApiKey,
		baseUrl: opts.BaseUrl,
	}, nil
}

func (c *Client) BaseUrl() string {
	return c.baseUrl
}

// Send posts a command and decodes the response. Failures of the http
// exchange come back as *TransportError, failures the remote service reports
// in its response body do not produce an error.
func (c *Client) Send(ctx context.Context, cmd Command) (Response, error) {
	ctx, span := tracer.Start(ctx, "client:Send", trace.WithAttributes(
		attribute.String("scrappey.cmd", string(cmd.Cmd)),
	))
	defer span.End()

	start := time.Now()
	outcome := "success"
	defer func() {
		attrs := metric.WithAttributes(
			attribute.String("cmd", string(cmd.Cmd)),
			attribute.String("outcome", outcome),
		)
		commandCounter.Add(ctx, 1, attrs)
		commandDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}()

	if !cmd.Cmd.Valid() {
		outcome = "invalid"
		span.SetStatus(codes.Error, "unknown command")
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownCmd, cmd.Cmd)
	}

	body, err := json.Marshal(cmd)
	if err != nil {
		outcome = "invalid"
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode command")
		c.tel.ReportBroken(report_client_send, fmt.Errorf("json marshal: %w", err), cmd.Cmd)
		return Response{}, fmt.Errorf("encode command: %w", err)
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		Post(c.baseUrl)
	if err != nil {
		// the url in a failed exchange carries the api key
		err = restyutil.RedactError(err)
		outcome = "transport"
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make request")
		return Response{}, &TransportError{Err: err}
	}
	if !res.IsSuccess() {
		outcome = "transport"
		span.SetStatus(codes.Error, res.Status())
		c.tel.ReportBroken(report_client_send, "unexpected status", cmd.Cmd, res.StatusCode())
		return Response{}, &TransportError{
			StatusCode: res.StatusCode(),
			Body:       res.Body(),
		}
	}

	var out Response
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		outcome = "decode"
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		c.tel.ReportBroken(report_client_send, fmt.Errorf("json unmarshal: %w", err), cmd.Cmd)
		return Response{Raw: res.Body()}, fmt.Errorf("decode response: %w", err)
	}

	if out.Data == DataError {
		outcome = "remote_error"
		c.tel.ReportWarning(report_client_send, "remote reported an error", cmd.Cmd, out.Error)
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, url string, opts Options) (Response, error) {
	return c.Send(ctx, Get(url, opts))
}

func (c *Client) Post(ctx context.Context, url string, postData any, opts Options) (Response, error) {
	return c.Send(ctx, Post(url, postData, opts))
}

func (c *Client) Put(ctx context.Context, url string, postData any, opts Options) (Response, error) {
	return c.Send(ctx, Put(url, postData, opts))
}

func (c *Client) Delete(ctx context.Context, url string, opts Options) (Response, error) {
	return c.Send(ctx, Delete(url, opts))
}

func (c *Client) Patch(ctx context.Context, url string, postData any, opts Options) (Response, error) {
	return c.Send(ctx, Patch(url, postData, opts))
}

func (c *Client) CreateSession(ctx context.Context, opts Options) (Response, error) {
	return c.Send(ctx, CreateSession(opts))
}

func (c *Client) DestroySession(ctx context.Context, session string) (Response, error) {
	return c.Send(ctx, DestroySession(session))
}

func (c *Client) ListSessions(ctx context.Context, userId int64) (Response, error) {
	return c.Send(ctx, ListSessions(userId))
}

func (c *Client) IsSessionActive(ctx context.Context, session string) (Response, error) {
	return c.Send(ctx, SessionActive(session))
}

func (c *Client) CreateWebsocket(ctx context.Context, userId int64, opts Options) (Response, error) {
	return c.Send(ctx, CreateWebsocket(userId, opts))
}
