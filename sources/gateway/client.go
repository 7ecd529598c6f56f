package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clubify/sources/configuration"
	"clubify/sources/features"
	"clubify/sources/metrics"
	"clubify/sources/network"
	"clubify/sources/tracing"
)

// Gateway is the only path to the backend. Every operation goes through
// do, which owns auth headers, JSON coding and the 429 retry policy.
type Gateway struct {
	client   *network.BackendHTTPClient
	config   *configuration.Config
	log      *tracing.Logger
	metrics  *metrics.MetricsService
	features *features.FeatureManager
}

func NewGateway(
	client *network.BackendHTTPClient,
	config *configuration.Config,
	log *tracing.Logger,
	metrics *metrics.MetricsService,
	features *features.FeatureManager,
) *Gateway {
	return &Gateway{
		client:   client,
		config:   config,
		log:      log,
		metrics:  metrics,
		features: features,
	}
}

type requestSpec struct {
	op             string
	method         string
	path           string
	body           any
	idempotencyKey string
}

// do performs a backend request. A 429 is retried up to
// Backend.MaxRetries times, honoring Retry-After when present and
// falling back to Backend.RetryDelay; any other status is terminal.
func (g *Gateway) do(ctx context.Context, spec requestSpec, out any) error {
	defer tracing.ProfilePoint(g.log, "Backend request completed", spec.op)()

	var payload []byte
	if spec.body != nil {
		var err error
		payload, err = json.Marshal(spec.body)
		if err != nil {
			return &Error{Kind: KindNetwork, cause: fmt.Errorf("encode request: %w", err)}
		}
	}

	url := strings.TrimRight(g.config.Backend.BaseURL, "/") + spec.path

	start := time.Now()
	defer func() {
		if g.metrics != nil {
			g.metrics.RecordGatewayRequestDuration(spec.op, time.Since(start))
		}
	}()

	for attempt := 0; ; attempt++ {
		resp, err := g.send(ctx, spec, url, payload)
		if err != nil {
			g.record(spec.op, "network")
			g.log.E("Backend request failed",
				tracing.GatewayOp, spec.op,
				tracing.GatewayAttempt, attempt,
				tracing.InnerError, err,
			)
			return &Error{Kind: KindNetwork, cause: err}
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < g.config.Backend.MaxRetries {
			backoff := g.backoff(resp)
			resp.Body.Close()

			if g.metrics != nil {
				g.metrics.RecordGatewayRetry()
			}
			g.log.W("Backend rate limited, retrying",
				tracing.GatewayOp, spec.op,
				tracing.GatewayAttempt, attempt,
				tracing.GatewayBackoff, backoff,
			)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return &Error{Kind: KindNetwork, cause: ctx.Err()}
			}
			continue
		}

		return g.finish(spec.op, resp, out)
	}
}

func (g *Gateway) send(ctx context.Context, spec requestSpec, url string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+g.config.Backend.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if spec.idempotencyKey != "" && g.features.IsEnabledDefault(features.FeatureGatewayIdempotency, true) {
		req.Header.Set("X-Idempotency-Key", spec.idempotencyKey)
	}

	return g.client.Do(req)
}

func (g *Gateway) finish(op string, resp *http.Response, out any) error {
	defer resp.Body.Close()

	g.record(op, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindNetwork, cause: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	kind := KindHttp
	switch resp.StatusCode {
	case http.StatusBadRequest:
		kind = KindBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindUnauthorized
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusTooManyRequests:
		kind = KindRateLimited
	}

	g.log.W("Backend returned error status",
		tracing.GatewayOp, op,
		tracing.GatewayStatus, resp.StatusCode,
	)

	return &Error{Kind: kind, Status: resp.StatusCode, Body: string(raw)}
}

// backoff reads Retry-After in whole seconds; anything unparsable falls
// back to the configured delay.
func (g *Gateway) backoff(resp *http.Response) time.Duration {
	delay := g.config.Backend.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return delay
}

func (g *Gateway) record(op, status string) {
	if g.metrics != nil {
		g.metrics.RecordGatewayRequest(op, status)
	}
}
