package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("client")

// WebhookNotifier POSTs snapshot events to every configured subscriber URL.
type WebhookNotifier struct {
	httpClient *http.Client
	urls       []string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewWebhookNotifier creates a WebhookNotifier. Empty URLs are ignored.
func NewWebhookNotifier(httpClient *http.Client, urls []string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *WebhookNotifier {
	clean := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" {
			clean = append(clean, u)
		}
	}
	return &WebhookNotifier{
		httpClient: httpClient,
		urls:       clean,
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}
}

// Subscribers returns the number of configured URLs.
func (n *WebhookNotifier) Subscribers() int {
	return len(n.urls)
}

// BreakerState reports the shared circuit breaker's state.
func (n *WebhookNotifier) BreakerState() gobreaker.State {
	return n.cb.State()
}

// Notify delivers event to all subscribers concurrently. Every subscriber
// is attempted; the returned error joins all failures.
func (n *WebhookNotifier) Notify(ctx context.Context, event domain.SnapshotEvent) error {
	ctx, span := tracer.Start(ctx, "WebhookNotifier.Notify")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", event.SessionID),
		attribute.String("budget.operation", event.Operation),
		attribute.Int("webhook.subscribers", len(n.urls)),
	)

	if len(n.urls) == 0 {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal snapshot event: %w", err)
	}

	errs := make([]error, len(n.urls))
	var g errgroup.Group
	if n.cfg.MaxConcurrency > 0 {
		g.SetLimit(n.cfg.MaxConcurrency)
	}
	for i, url := range n.urls {
		i, url := i, url
		g.Go(func() error {
			if err := n.deliver(ctx, url, body); err != nil {
				n.logger.Warn("snapshot webhook failed",
					zap.String("url", url),
					zap.String("session_id", event.SessionID),
					zap.Error(err),
				)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (n *WebhookNotifier) deliver(ctx context.Context, url string, body []byte) error {
	_, err := n.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, n.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return resilience.Permanent(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := n.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return nil
			case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
				return resilience.Permanent(fmt.Errorf("webhook returned status %d", resp.StatusCode))
			default:
				return fmt.Errorf("webhook returned status %d", resp.StatusCode)
			}
		})
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: "webhook"}
	}
	if err != nil {
		return &domain.ErrExternalService{Service: "webhook", Err: err}
	}
	return nil
}
