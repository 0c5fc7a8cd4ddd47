package scrappey

import (
	"errors"
	"fmt"
)

var ErrMissingApiKey = errors.New("scrappey: an api key is required")
var ErrUnknownCmd = errors.New("scrappey: unknown command")

// TransportError is returned when the http exchange itself failed: the
// connection broke, the client timed out, or the status was not 2xx.
// StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Body       []byte
	Err        error
}

const maxErrorBody = 256

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("scrappey: transport: %v", e.Err)
	}
	body := string(e.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("scrappey: http status %d: %s", e.StatusCode, body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
