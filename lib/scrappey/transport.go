package scrappey

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Transport is an http.RoundTripper that fetches every request through the
// scrappey api, so existing http code picks up antibot bypass unchanged.
type Transport struct {
	client   *Client
	defaults Options
	// Session, when set, binds every request to a remote browser session.
	Session string
}

// NewTransport creates a Transport whose commands start from `defaults`.
func NewTransport(client *Client, defaults Options) *Transport {
	return &Transport{client: client, defaults: defaults}
}

// NewHttpClient returns an *http.Client that sends everything through the scrappey api.
func NewHttpClient(client *Client, defaults Options) *http.Client {
	return &http.Client{Transport: NewTransport(client, defaults)}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	cmd, err := t.command(req)
	if err != nil {
		return nil, err
	}
	res, err := t.client.Send(req.Context(), cmd)
	if err != nil {
		return nil, err
	}
	return httpResponse(req, res), nil
}

func (t *Transport) command(req *http.Request) (Command, error) {
	if req.Body != nil {
		defer req.Body.Close()
	}

	opts := t.defaults
	opts.CustomHeaders = make(map[string]string, len(t.defaults.CustomHeaders)+len(req.Header))
	for k, v := range t.defaults.CustomHeaders {
		opts.CustomHeaders[k] = v
	}
	for name, values := range req.Header {
		if http.CanonicalHeaderKey(name) == "Cookie" {
			opts.Cookies = strings.Join(values, "; ")
			continue
		}
		opts.CustomHeaders[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	if len(opts.CustomHeaders) == 0 {
		opts.CustomHeaders = nil
	}

	var postData any
	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return Command{}, fmt.Errorf("read request body: %w", err)
		}
		postData = string(body)
	}

	url := req.URL.String()
	var cmd Command
	switch req.Method {
	case "", http.MethodGet:
		cmd = Get(url, opts)
	case http.MethodDelete:
		cmd = Delete(url, opts)
	case http.MethodPost:
		cmd = Post(url, postData, opts)
	case http.MethodPut:
		cmd = Put(url, postData, opts)
	case http.MethodPatch:
		cmd = Patch(url, postData, opts)
	default:
		return Command{}, fmt.Errorf("scrappey: unsupported method %s", req.Method)
	}
	if t.Session != "" {
		cmd = cmd.InSession(t.Session)
	}
	return cmd, nil
}

func httpResponse(req *http.Request, res Response) *http.Response {
	solution := res.Solution

	status := solution.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	header := http.Header{}
	for k, v := range solution.ResponseHeaders {
		switch value := v.(type) {
		case []any:
			for _, item := range value {
				header.Add(k, fmt.Sprint(item))
			}
		default:
			header.Set(k, fmt.Sprint(value))
		}
	}

	// inner text is preferred since it is what the page rendered, like a json api body
	body := solution.Response
	contentType := "text/html; charset=utf-8"
	if solution.InnerText != "" {
		body = solution.InnerText
		contentType = "text/plain; charset=utf-8"
		if json.Valid([]byte(body)) {
			contentType = "application/json"
		}
	}
	if header.Get("content-type") == "" {
		header.Set("content-type", contentType)
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
