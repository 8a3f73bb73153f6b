package httpclient

import (
	"context"
	"fmt"
	"net/http"
)

const maxErrorBody = 256

type BaseResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// StatusError is returned by CheckStatus for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// CheckStatus returns a *StatusError carrying a truncated body unless the
// response is 2xx.
func (r *BaseResponse) CheckStatus() error {
	if r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	body := string(r.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{StatusCode: r.StatusCode, Body: body}
}

// HTTPClient is the read-only JSON client used by market data repositories.
type HTTPClient interface {
	Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result interface{}) (*BaseResponse, error)
}
