package notesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/notesweb/internal/telemetry/metrics"
	"github.com/2beens/notesweb/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client talks to the notes REST backend, e.g. http://localhost:8080/api
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Manager
}

func NewClient(baseURL string, httpClient *http.Client, metricsManager *metrics.Manager) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    metricsManager,
	}
}

// NewTracedHttpClient returns an http client which propagates the trace context to the backend.
// Zero timeout means no timeout.
func NewTracedHttpClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}
}

func (c *Client) List(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := c.do(ctx, "list", http.MethodGet, "/notes", nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Note, error) {
	path, err := notePath(id)
	if err != nil {
		return nil, err
	}

	note := &Note{}
	if err := c.do(ctx, "get", http.MethodGet, path, nil, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (c *Client) Create(ctx context.Context, title, content string) (*Note, error) {
	note := &Note{}
	reqBody := noteRequest{Title: title, Content: content}
	if err := c.do(ctx, "create", http.MethodPost, "/notes", reqBody, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (c *Client) Update(ctx context.Context, id, title, content string) (*Note, error) {
	path, err := notePath(id)
	if err != nil {
		return nil, err
	}

	note := &Note{}
	reqBody := noteRequest{Title: title, Content: content}
	if err := c.do(ctx, "update", http.MethodPut, path, reqBody, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	path, err := notePath(id)
	if err != nil {
		return err
	}
	return c.do(ctx, "delete", http.MethodDelete, path, nil, nil)
}

func (c *Client) Share(ctx context.Context, id string) (*ShareLink, error) {
	path, err := notePath(id)
	if err != nil {
		return nil, err
	}

	link := &ShareLink{}
	if err := c.do(ctx, "share", http.MethodGet, path+"/share", nil, link); err != nil {
		return nil, err
	}
	if link.ShareURL == "" {
		return nil, fmt.Errorf("share note %s: empty share url received", id)
	}
	return link, nil
}

func (c *Client) GetShared(ctx context.Context, shareToken string) (*Note, error) {
	if strings.TrimSpace(shareToken) == "" {
		return nil, ErrEmptyID
	}

	note := &Note{}
	if err := c.do(ctx, "getShared", http.MethodGet, "/shared/"+url.PathEscape(shareToken), nil, note); err != nil {
		return nil, err
	}
	return note, nil
}

func notePath(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", ErrEmptyID
	}
	return "/notes/" + url.PathEscape(id), nil
}

// do makes a single round trip to the backend. reqBody and respBody are
// json encoded/decoded when not nil.
func (c *Client) do(ctx context.Context, op, method, path string, reqBody, respBody any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "notesApi."+op)
	defer span.End()

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("notes_api.path", path),
	)

	defer func(begin time.Time) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "ok")
		}
		if c.metrics != nil {
			c.metrics.HistogramNotesApiDuration.
				WithLabelValues(op, outcome).
				Observe(time.Since(begin).Seconds())
		}
	}(time.Now())

	var bodyReader io.Reader
	if reqBody != nil {
		reqBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		bodyReader = bytes.NewReader(reqBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("new %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newApiError(resp.StatusCode, respBytes)
		log.Debugf("notes api %s %s: %s", method, path, apiErr)
		return apiErr
	}

	if respBody == nil || len(bytes.TrimSpace(respBytes)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBytes, respBody); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", op, err)
	}

	return nil
}
