package camunda

import (
	"context"
	"fmt"
	"time"

	"solar-advisor/internal/common/config"
	"solar-advisor/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/cenkalti/backoff/v4"
)

// Client wraps the Zeebe gRPC client.
type Client struct {
	zeebe          zbc.Client
	requestTimeout time.Duration
}

// Connect dials the broker and waits until it answers a topology request,
// retrying with exponential backoff up to maxRetries times.
func Connect(ctx context.Context, cfg config.CamundaConfig, maxRetries int, log logger.Logger) (*Client, error) {
	zeebe, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{zeebe: zeebe, requestTimeout: config.GetDuration(cfg.RequestTimeout)}
	if c.requestTimeout <= 0 {
		c.requestTimeout = 10 * time.Second
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = 0

	attempt := 0
	op := func() error {
		attempt++
		err := c.Ping(ctx)
		if err != nil {
			log.Warn("Zeebe broker not reachable yet", map[string]interface{}{
				"address": cfg.BrokerAddress,
				"attempt": attempt,
				"error":   err.Error(),
			})
		}
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx)); err != nil {
		zeebe.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}
	return c, nil
}

// Zeebe returns the raw client for opening job workers.
func (c *Client) Zeebe() zbc.Client {
	return c.zeebe
}

// Ping sends a topology request.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if _, err := c.zeebe.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe topology request failed: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.zeebe.Close()
}
