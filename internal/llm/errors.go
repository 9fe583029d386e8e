package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream marks a response the endpoint produced but that was not a
	// usable completion: a non-2xx status, an error frame or no choices.
	ErrUpstream = errors.New("llm: upstream failure")
	// ErrTransport marks a failure to exchange bytes with the endpoint:
	// dial, TLS, timeout or a broken stream.
	ErrTransport = errors.New("llm: transport error")
	// ErrStreamConsumed is the failure of a stream ranged over a second time.
	ErrStreamConsumed = errors.New("llm: stream already consumed")
)

// HTTPError is a non-2xx response. It matches ErrUpstream under errors.Is.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "upstream http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("upstream http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("upstream http error: status=%d body=%s", e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error { return ErrUpstream }

func transportErr(err error) error {
	if err == nil || errors.Is(err, ErrTransport) || errors.Is(err, ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// outcome labels an error for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	default:
		return "transport_error"
	}
}
