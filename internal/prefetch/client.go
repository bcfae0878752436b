package prefetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RegistryClient fetches per-package registry metadata documents, with
// bearer/basic auth and 5xx/429 retry. Shape grounded on the teacher's
// UpdateChecker.getPackageVersionData in internal/analysis/update_checker.go
// (http.Client + context request + User-Agent header + JSON decode),
// generalized with exponential backoff retry via cenkalti/backoff.
type RegistryClient struct {
	HTTPClient  *http.Client
	BaseURL     string
	BearerToken string
	BasicUser   string
	BasicPass   string
	UserAgent   string
}

// httpError marks a response status that should not be retried (e.g. 404).
type httpError struct {
	status int
}

func (e *httpError) Error() string { return fmt.Sprintf("registry returned status %d", e.status) }

func (c *RegistryClient) applyAuth(req *http.Request) {
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
		return
	}
	if c.BasicUser != "" {
		req.SetBasicAuth(c.BasicUser, c.BasicPass)
	}
}

// FetchRaw issues GET <base>/<name>, retrying up to 3 times with exponential
// backoff starting at 100ms on 5xx/429 or network error; 404 is not retried.
func (c *RegistryClient) FetchRaw(ctx context.Context, name string) (map[string]interface{}, error) {
	var body []byte

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 100 * time.Millisecond
	bo := backoff.WithContext(backoff.WithMaxRetries(exp, 3), ctx)

	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+name, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent())
		c.applyAuth(req)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err // network error: retry
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return backoff.Permanent(&httpError{status: resp.StatusCode})
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return &httpError{status: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&httpError{status: resp.StatusCode})
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = b
		return nil
	}, bo)
	if err != nil {
		return nil, err
	}

	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse registry response for %s: %w", name, err)
	}
	return out, nil
}

func (c *RegistryClient) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return "depspector/1.0"
}

// IsNotFound reports whether err is the registry's 404 response.
func IsNotFound(err error) bool {
	he, ok := err.(*httpError)
	return ok && he.status == http.StatusNotFound
}
