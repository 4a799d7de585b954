package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (c *HTTPPalletClient) newRequest(
	ctx context.Context,
	method string,
	path string,
	body any,
	idempotencyKey string,
) (*retryablehttp.Request, error) {
	var raw []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		raw = b
	}

	var rawBody any
	if raw != nil {
		rawBody = bytes.NewReader(raw)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, rawBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if raw != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	return req, nil
}

// do sends req and returns the response body. Status codes >= 400 become httpStatusError.
func (c *HTTPPalletClient) do(req *retryablehttp.Request) ([]byte, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return b, nil
}

// checkRetry retries transient failures (network errors, 429 and 5xx gateway
// responses) and stops immediately on context cancellation.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	switch resp.StatusCode {
	case 429, 500, 502, 503, 504:
		return true, nil
	}
	return false, nil
}

// retryLogger routes retryablehttp's leveled output into logrus at debug level.
type retryLogger struct {
	log logrus.FieldLogger
}

func (l retryLogger) fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			f[k] = kv[i+1]
		}
	}
	return f
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.log.WithFields(l.fields(kv)).Warn(msg) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.log.WithFields(l.fields(kv)).Debug(msg) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.log.WithFields(l.fields(kv)).Debug(msg) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.log.WithFields(l.fields(kv)).Debug(msg) }
