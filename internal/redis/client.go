package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const pingTimeout = 5 * time.Second

// ErrDisabled is returned by Connect when no URL is configured.
var ErrDisabled = errors.New("redis disabled")

// Client is the connection the activity stream publishes through.
type Client struct {
	*redis.Client
}

// Connect parses url (redis://[:password@]host:port[/db]) and pings the server.
func Connect(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		return nil, ErrDisabled
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	c := &Client{Client: redis.NewClient(opts)}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Client.Ping(ctx).Err(); err != nil {
		c.Client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return c, nil
}

// ConnectOptional is Connect for deployments where Redis may be absent. It
// logs why the connection was skipped and returns nil in that case.
func ConnectOptional(ctx context.Context, url string, log *logrus.Entry) *Client {
	c, err := Connect(ctx, url)
	switch {
	case errors.Is(err, ErrDisabled):
		log.Info("REDIS_URL not set, activity events disabled")
		return nil
	case err != nil:
		log.WithError(err).Warn("Redis unavailable, activity events disabled")
		return nil
	}
	log.WithField("addr", c.Options().Addr).Info("Connected to Redis")
	return c
}

// Close is safe on a nil client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.Client.Close()
}
