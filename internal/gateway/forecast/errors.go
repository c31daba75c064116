package forecast

import (
	"errors"
	"fmt"
	"strings"
)

const maxErrorBodyPreview = 800

var (
	// ErrUpstream indicates forecast backend failure.
	ErrUpstream = errors.New("error when trying to get forecast from backend")
	// ErrNetwork covers unreachable backends, timeouts and an open circuit.
	ErrNetwork = errors.New("network error")
	// ErrService covers non-success status codes.
	ErrService = errors.New("service error")
	// ErrMalformedResponse covers undecodable or wrongly shaped payloads.
	ErrMalformedResponse = errors.New("malformed response")
)

// UpstreamRequestError carries HTTP context for failed forecast calls.
type UpstreamRequestError struct {
	Kind       error
	Method     string
	URL        string
	StatusCode int
	Body       string
	Cause      error
}

func (e *UpstreamRequestError) Error() string {
	parts := []string{ErrUpstream.Error()}
	if e.Kind != nil {
		parts = append(parts, e.Kind.Error())
	}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	method := strings.TrimSpace(e.Method)
	url := strings.TrimSpace(e.URL)
	if method != "" || url != "" {
		parts = append(parts, strings.TrimSpace(method+" "+url))
	}
	if trimmed := compactBodyPreview(e.Body); trimmed != "" {
		parts = append(parts, fmt.Sprintf("body=%q", trimmed))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}
	return strings.Join(parts, "; ")
}

func (e *UpstreamRequestError) Unwrap() []error {
	errs := []error{ErrUpstream}
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func compactBodyPreview(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	body = strings.Join(strings.Fields(body), " ")
	if len(body) > maxErrorBodyPreview {
		return body[:maxErrorBodyPreview] + "..."
	}
	return body
}
