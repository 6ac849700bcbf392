// Package segment resolves user segments through the external segment service.
package segment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/fairyhunter13/cart-offer-service/internal/metrics"
	"github.com/fairyhunter13/cart-offer-service/internal/model"
	"github.com/fairyhunter13/cart-offer-service/internal/service"
)

// maxBodyBytes bounds how much of a segment response is read.
const maxBodyBytes = 64 << 10

type segmentResponse struct {
	Segment *string `json:"segment"`
}

// Client calls GET <baseURL>/user_segment?user_id=<id>.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	group      singleflight.Group
	tracer     trace.Tracer
}

// Ensure Client implements service.SegmentResolver
var _ service.SegmentResolver = (*Client)(nil)

// NewClient creates a segment service client. Each lookup waits at most timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, timeout, &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	})
}

// NewClientWithHTTP creates a Client with a custom *http.Client.
// This is primarily used for testing.
func NewClientWithHTTP(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
		tracer:     otel.Tracer("github.com/fairyhunter13/cart-offer-service/internal/segment"),
	}
}

// Resolve returns the user's segment, or an unresolved segment on any failure.
// Concurrent lookups for the same user share one upstream call.
func (c *Client) Resolve(ctx context.Context, userID int64) model.Segment {
	key := strconv.FormatInt(userID, 10)
	ch := c.group.DoChan(key, func() (any, error) {
		// Detached from the first caller's cancellation so other waiters still get
		// an answer; the timeout still bounds the call.
		return c.Lookup(context.WithoutCancel(ctx), userID)
	})

	select {
	case <-ctx.Done():
		metrics.SegmentLookups.WithLabelValues("unresolved").Inc()
		return model.UnresolvedSegment()
	case res := <-ch:
		if res.Err != nil {
			log.Warn().Err(res.Err).Int64("user_id", userID).Msg("segment lookup failed, applying no offer")
			metrics.SegmentLookups.WithLabelValues("unresolved").Inc()
			return model.UnresolvedSegment()
		}
		metrics.SegmentLookups.WithLabelValues("resolved").Inc()
		return model.ResolvedSegment(res.Val.(string))
	}
}

// Lookup performs one upstream call and returns the segment label.
// Every failure wraps service.ErrUpstreamUnavailable.
func (c *Client) Lookup(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "segment.Lookup", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	label, err := c.lookup(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("%w: %w", service.ErrUpstreamUnavailable, err)
	}
	span.SetAttributes(attribute.String("segment", label))
	return label, nil
}

func (c *Client) lookup(ctx context.Context, userID int64) (string, error) {
	q := url.Values{}
	q.Set("user_id", strconv.FormatInt(userID, 10))
	target := c.baseURL + "/user_segment?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call segment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return "", fmt.Errorf("segment service returned status %d", resp.StatusCode)
	}

	var body segmentResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return "", fmt.Errorf("decode segment response: %w", err)
	}
	if body.Segment == nil {
		return "", fmt.Errorf("segment field missing")
	}
	label := strings.TrimSpace(*body.Segment)
	if label == "" || label == model.SegmentUnknown {
		return "", fmt.Errorf("segment field empty")
	}
	return label, nil
}
