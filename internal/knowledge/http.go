package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// retryPolicy bounds how often a request is re-sent after a transport
// error, a 429, or a 5xx status.
type retryPolicy struct {
	attempts int
	delay    time.Duration
}

// postJSON sends payload to endpoint and decodes a 2xx body into out.
// describe turns a non-retryable error body into a message.
func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, payload, out any, policy retryPolicy, describe func([]byte) string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= policy.attempts; attempt++ {
		if attempt > 0 && !waitOrCancel(ctx, policy.delay) {
			return ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return readErr
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg := strings.TrimSpace(string(data))
			if describe != nil {
				if d := describe(data); d != "" {
					msg = d
				}
			}
			return fmt.Errorf("request failed (%d): %s", resp.StatusCode, msg)
		}
		return json.Unmarshal(data, out)
	}
	return lastErr
}

// inBatches calls fn for consecutive slices of at most size texts, pausing
// between calls, and concatenates the results.
func inBatches(ctx context.Context, texts []string, size int, pause time.Duration, fn func([]string) ([][]float32, error)) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += size {
		if i > 0 && !waitOrCancel(ctx, pause) {
			return nil, ctx.Err()
		}
		end := i + size
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := fn(texts[i:end])
		if err != nil {
			return nil, err
		}
		if len(vecs) != end-i {
			return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(vecs), end-i)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func waitOrCancel(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
