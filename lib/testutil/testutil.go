package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type Request struct {
	Method      string
	Key         string
	ContentType string
	// Body is the decoded command.
	Body map[string]any
}

// FakeApi stands in for the scrappey api. It records every command it
// receives and replies with the response registered for the command's `cmd`,
// or Default when there is none.
type FakeApi struct {
	// Responses maps a cmd like "request.get" to a raw json body.
	Responses map[string]string
	Default   string
	// Status defaults to 200.
	Status int
	// Statuses overrides Status for the commands it names.
	Statuses map[string]int

	t        testing.TB
	mutex    sync.Mutex
	requests []Request
}

// NewFakeApi starts a server for `api`, it is closed when the test ends.
func NewFakeApi(t testing.TB, api *FakeApi) *httptest.Server {
	api.t = t
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return srv
}

func (f *FakeApi) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		f.t.Errorf("read request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var body map[string]any
	err = json.Unmarshal(raw, &body)
	if err != nil {
		f.t.Errorf("request body is not a json object: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mutex.Lock()
	f.requests = append(f.requests, Request{
		Method:      r.Method,
		Key:         r.URL.Query().Get("key"),
		ContentType: r.Header.Get("content-type"),
		Body:        body,
	})
	f.mutex.Unlock()

	response := f.Default
	cmd, _ := body["cmd"].(string)
	if registered, ok := f.Responses[cmd]; ok {
		response = registered
	}

	status := f.Status
	if registered, ok := f.Statuses[cmd]; ok {
		status = registered
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(response))
}

// Requests returns a copy of the requests received so far.
func (f *FakeApi) Requests() []Request {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]Request(nil), f.requests...)
}

// Commands returns the decoded body of every request received so far.
func (f *FakeApi) Commands() []map[string]any {
	requests := f.Requests()
	out := make([]map[string]any, len(requests))
	for i, r := range requests {
		out[i] = r.Body
	}
	return out
}
