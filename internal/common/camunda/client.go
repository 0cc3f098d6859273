// internal/common/camunda/client.go
package camunda

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"jobmatch-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultConnectionTimeout = 10 * time.Second
	defaultRequestTimeout    = 30 * time.Second
)

// Client owns the gateway connection shared by all match workers.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	// ConnectionTimeout bounds the initial topology handshake, retries included.
	ConnectionTimeout time.Duration
	// RequestTimeout bounds a single broker round trip such as a readiness probe.
	RequestTimeout time.Duration
	RetryConfig    *RetryConfig
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

func (c *ClientConfig) withDefaults() *ClientConfig {
	out := *c
	if out.RetryConfig == nil {
		out.RetryConfig = DefaultRetryConfig
	}
	if out.ConnectionTimeout <= 0 {
		out.ConnectionTimeout = defaultConnectionTimeout
	}
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = defaultRequestTimeout
	}
	return &out
}

// NewClientWithConfig dials the gateway and fails unless the broker answers
// a topology request within ConnectionTimeout.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	config = config.withDefaults()

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := Retry(ctx, config.RetryConfig, "topology", zeebeClient.NewTopologyCommand().Send); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}

	return &Client{client: zeebeClient, config: config}, nil
}

// GetClient exposes the raw client for job workers.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck sends one topology request bounded by RequestTimeout.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Retry runs send with exponential backoff while the broker reports a
// transient failure. The final error is a StandardError.
func Retry[T any](ctx context.Context, cfg *RetryConfig, operation string, send func(context.Context) (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultRetryConfig
	}

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := send(ctx)
		if err == nil {
			return result, nil
		}
		if !isTransient(err) || attempt == cfg.MaxRetries {
			return zero, brokerError(err, operation, attempt+1)
		}

		delay := min(cfg.BaseDelay<<attempt, cfg.MaxDelay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, fmt.Errorf("operation %s cancelled after %d attempts: %w", operation, attempt+1, ctx.Err())
		}
	}
}

var transientCodes = map[codes.Code]bool{
	codes.Unavailable:       true,
	codes.DeadlineExceeded:  true,
	codes.ResourceExhausted: true,
	codes.Aborted:           true,
}

// Errors raised below gRPC (dial failures) carry no status, so they fall
// back to message matching.
var transientPhrases = []string{
	"connection refused",
	"connection reset",
	"deadline exceeded",
	"broken pipe",
}

func isTransient(err error) bool {
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return transientCodes[st.Code()]
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range transientPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func brokerError(err error, operation string, attempts int) error {
	wrapped := fmt.Errorf("zeebe %s failed after %d attempts: %w", operation, attempts, err)
	if status.Code(err) == codes.DeadlineExceeded || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError("zeebe", wrapped)
	}
	return errors.NewExternalServiceError("zeebe", wrapped)
}
