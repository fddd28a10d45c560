// Package ws connects to the live-stream comment relay and turns its frames
// into quiz events. The relay owns the platform connection; this client only
// speaks the relay's small JSON protocol.
package ws

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"live-trivia-service/internal/domain"
)

// Handler receives the three events the quiz core consumes.
type Handler interface {
	OnConnect(streamer string)
	OnComment(comment domain.Comment)
	OnDisconnect()
}

type inboundFrame struct {
	Type string `json:"type"`
	User struct {
		ID       string `json:"id"`
		Nickname string `json:"nickname"`
	} `json:"user"`
	Comment  string `json:"comment"`
	Streamer string `json:"streamer"`
}

// Client reads comment frames from a websocket relay, reconnecting with a
// doubling delay capped at 30 seconds, up to maxRetries consecutive failures.
// The retry counter resets whenever a connection is established.
type Client struct {
	url        string
	handler    Handler
	logger     *zap.Logger
	dialer     *websocket.Dialer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func NewClient(url string, handler Handler, logger *zap.Logger) *Client {
	return &Client{
		url:        url,
		handler:    handler,
		logger:     logger,
		dialer:     websocket.DefaultDialer,
		maxRetries: 5,
		baseDelay:  5 * time.Second,
		maxDelay:   30 * time.Second,
	}
}

// Run connects and pumps events until ctx is canceled or the retry budget is
// exhausted.
func (c *Client) Run(ctx context.Context) error {
	retries := 0
	delay := c.baseDelay

	for {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			retries++
			if retries > c.maxRetries {
				return fmt.Errorf("comment relay unreachable after %d attempts: %w", retries-1, err)
			}
			c.logger.Warn("comment relay dial failed, retrying",
				zap.Int("attempt", retries),
				zap.Duration("delay", delay),
				zap.Error(err))
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
			delay = minDuration(delay*2, c.maxDelay)
			continue
		}

		retries = 0
		delay = c.baseDelay
		c.pump(ctx, conn)
		c.handler.OnDisconnect()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		retries++
		if retries > c.maxRetries {
			return fmt.Errorf("comment relay connection lost %d times", retries-1)
		}
		c.logger.Warn("comment relay disconnected, reconnecting",
			zap.Int("attempt", retries),
			zap.Duration("delay", delay))
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
		delay = minDuration(delay*2, c.maxDelay)
	}
}

// pump reads frames until the connection drops or ctx is canceled.
func (c *Client) pump(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() == nil {
				c.logger.Debug("comment relay read ended", zap.Error(err))
			}
			return
		}
		switch frame.Type {
		case "connect":
			c.handler.OnConnect(frame.Streamer)
		case "comment":
			c.handler.OnComment(domain.Comment{
				ParticipantID: frame.User.ID,
				DisplayName:   frame.User.Nickname,
				Text:          frame.Comment,
			})
		case "disconnect":
			return
		default:
			c.logger.Debug("ignoring unknown frame", zap.String("type", frame.Type))
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
