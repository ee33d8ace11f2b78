package testevents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/internal/domain/types"
)

// HTTPClient wraps http.Client with the service's base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request and decodes a JSON answer into out when out is non-nil.
// Any status other than want is an error carrying the response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, StatusOK, nil)
}

// PostEvents appends events to stream/streamID in order.
func (c *HTTPClient) PostEvents(ctx context.Context, stream, streamID string, events []model.Event) error {
	var ack struct {
		Keys []string `json:"keys"`
	}
	path := "/live/" + url.PathEscape(stream) + "/" + url.PathEscape(streamID) + "/events"
	if err := c.do(ctx, http.MethodPost, path, events, StatusAccepted, &ack); err != nil {
		return err
	}
	if len(ack.Keys) != len(events) {
		return fmt.Errorf("posted %d events, %d acknowledged", len(events), len(ack.Keys))
	}
	return nil
}

// StartSession follows stream/streamID.
func (c *HTTPClient) StartSession(ctx context.Context, stream, streamID string) (SessionView, error) {
	var v SessionView
	req := map[string]string{"stream": stream, "streamId": streamID}
	err := c.do(ctx, http.MethodPost, "/live/sessions", req, StatusCreated, &v)
	return v, err
}

// Session fetches a live session.
func (c *HTTPClient) Session(ctx context.Context, id string) (SessionView, error) {
	var v SessionView
	err := c.do(ctx, http.MethodGet, "/live/sessions/"+url.PathEscape(id), nil, StatusOK, &v)
	return v, err
}

// SessionTables fetches a live session's display tables.
func (c *HTTPClient) SessionTables(ctx context.Context, id string) ([]types.Table, error) {
	var tables []types.Table
	err := c.do(ctx, http.MethodGet, "/live/sessions/"+url.PathEscape(id)+"/tables", nil, StatusOK, &tables)
	return tables, err
}

// StopSession ends a live session.
func (c *HTTPClient) StopSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/live/sessions/"+url.PathEscape(id), nil, StatusNoContent, nil)
}

// FindStream resolves matchID to the stream child that announced it.
func (c *HTTPClient) FindStream(ctx context.Context, stream, matchID string) (string, error) {
	var out struct {
		StreamID string `json:"streamId"`
	}
	path := "/matches/" + url.PathEscape(matchID) + "/stream?stream=" + url.QueryEscape(stream)
	err := c.do(ctx, http.MethodGet, path, nil, StatusOK, &out)
	return out.StreamID, err
}

// WaitForEvents polls a session until it has folded n events or ctx ends.
func (c *HTTPClient) WaitForEvents(ctx context.Context, id string, n int) (SessionView, error) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		v, err := c.Session(ctx, id)
		if err != nil {
			return v, err
		}
		if v.State != nil && v.State.EventCount >= n {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return v, fmt.Errorf("session %s folded %d of %d events: %w", id, eventCount(v), n, ctx.Err())
		case <-ticker.C:
		}
	}
}

func eventCount(v SessionView) int {
	if v.State == nil {
		return 0
	}
	return v.State.EventCount
}

// postMatches posts every match concurrently. Events within a match are sent
// in order, config.BatchSize at a time.
func postMatches(ctx context.Context, config *Config, client *HTTPClient, matches []Match, stats *Stats) error {
	log.Printf("📤 Posting %d matches with %d workers...", len(matches), config.Workers)

	var (
		posted int64
		failed int64
	)

	jobs := make(chan Match, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				for start := 0; start < len(m.Events); start += config.BatchSize {
					end := min(start+config.BatchSize, len(m.Events))
					if err := client.PostEvents(ctx, m.Stream, m.StreamID, m.Events[start:end]); err != nil {
						atomic.AddInt64(&failed, 1)
						log.Printf("❌ %s/%s: %v", m.Stream, m.StreamID, err)
						break
					}
					atomic.AddInt64(&posted, int64(end-start))
				}
				if config.Verbose {
					log.Printf("📊 Progress: %d/%d events posted", atomic.LoadInt64(&posted), stats.EventsGenerated)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, m := range matches {
			select {
			case <-ctx.Done():
				return
			case jobs <- m:
			}
		}
	}()

	wg.Wait()

	stats.EventsPosted = int(atomic.LoadInt64(&posted))
	stats.BatchesFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Posting completed:
   Posted: %d
   Failed batches: %d
`, stats.EventsPosted, stats.BatchesFailed)

	if stats.BatchesFailed > 0 {
		return fmt.Errorf("%d batches failed", stats.BatchesFailed)
	}
	return ctx.Err()
}
