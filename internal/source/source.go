// Package source contains the ingestion adapters: one per upstream venue,
// each behind the same narrow capability interface. The set of adapters is
// fixed and selected from configuration at startup; there is no runtime
// dynamic dispatch. Adapters do not retry; a failed or timed-out poll is
// reported to the scheduler, which applies backoff.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/linescout/linescout/internal/domain"
)

// Adapter is implemented by every ingestion source.
type Adapter interface {
	Name() string
	Category() domain.SourceCategory
	// Poll fetches the source once and returns everything ingested plus the
	// number of API calls consumed. The context carries the poll timeout.
	Poll(ctx context.Context) (domain.PollResult, error)
}

// httpTimeout bounds a single request; the worker's poll timeout bounds the
// whole poll.
const httpTimeout = 20 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// getJSON performs a GET with query params and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, rawURL string, params url.Values, headers map[string]string, out any) error {
	u := rawURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("source: %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("source: %s: status %d: %s", rawURL, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("source: %s: decode: %w", rawURL, err)
	}
	return nil
}
