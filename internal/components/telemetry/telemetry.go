package telemetry

import "fmt"

// API is where components send what they observe. Commands that fail,
// responses the remote service marks as errors and debug traces of each
// exchange all go through it, so tests can swap in a Recorder and assert on
// them.
type API interface {
	// ReportBroken reports a failure that needs fixing, a rejected api key or
	// a body that does not decode.
	//
	// `id` names the component, like `client.send`, never the step inside it.
	// It is lowercase, with dots between a component and its operation.
	// Details go into `params`.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something expected to happen now and then, like
	// the remote service answering `"data": "error"`.
	ReportWarning(id string, params ...any)

	ReportDebug(msg string, params ...any)

	// ReportCount reports a gauge-like count, successive values are samples
	// and must not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, NewScopedAPI("scrappey", tel)
// turns `client.send` into `scrappey: client.send`.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scoped(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scoped(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scoped(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scoped(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scoped(id), count)
}
