package clients

import (
	"fmt"
	"io"
	"net/http"
)

// UpstreamError is a non-2xx answer from Reddit or the LLM provider.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

func newUpstreamError(service string, resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, MAX_ERROR_BODY))
	return &UpstreamError{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
}
