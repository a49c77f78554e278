// Package azure carries the realtime event protocol over an Azure OpenAI
// realtime websocket.
package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultAPIVersion = "2024-10-01-preview"

	realtimePath = "/openai/realtime"
	writeTimeout = 10 * time.Second
)

var ErrClosed = errors.New("realtime channel closed")

type Config struct {
	// Endpoint is the resource endpoint, e.g. https://name.openai.azure.com.
	Endpoint   string
	Deployment string
	APIVersion string
	APIKey     string
}

func (c Config) url() (string, error) {
	endpoint, err := url.Parse(strings.TrimRight(strings.TrimSpace(c.Endpoint), "/"))
	if err != nil || endpoint.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q", c.Endpoint)
	}
	if c.Deployment == "" {
		return "", fmt.Errorf("deployment is required")
	}

	switch endpoint.Scheme {
	case "https", "wss":
		endpoint.Scheme = "wss"
	case "http", "ws":
		endpoint.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported endpoint scheme %q", endpoint.Scheme)
	}

	apiVersion := c.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	query := url.Values{}
	query.Set("api-version", apiVersion)
	query.Set("deployment", c.Deployment)

	endpoint.Path = realtimePath
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}

// Channel is an open realtime session. Send is safe for concurrent use.
type Channel struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func Dial(ctx context.Context, config Config) (*Channel, error) {
	ctx, span := tracer.Start(ctx, "dial realtime channel")
	defer span.End()

	target, err := config.url()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if config.APIKey == "" {
		err := fmt.Errorf("azure openai api key not found")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("realtime.deployment", config.Deployment))

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, http.Header{"api-key": {config.APIKey}})
	if err != nil {
		if resp != nil {
			span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
		}
		err = fmt.Errorf("failed to open realtime websocket: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &Channel{conn: conn}, nil
}

// Send writes one JSON control message.
func (c *Channel) Send(ctx context.Context, msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	deadline := time.Now().Add(writeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = c.conn.SetWriteDeadline(deadline)

	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}

// Listen delivers every text message to onMessage in arrival order until the
// connection closes or ctx is done.
func (c *Channel) Listen(ctx context.Context, onMessage func(ctx context.Context, data []byte)) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || c.isClosed() || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("websocket read error: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			onMessage(ctx, msg)
		default:
			logger.Debug("ignoring non-text realtime message", "type", msgType, "size", len(msg))
		}
	}
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.conn.Close()
}

func (c *Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
