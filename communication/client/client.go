// Package client submits evaluation jobs to a remote evaluation server over
// one persistent TCP connection.
package client

import (
	"bufio"
	"connect4/communication"
	"connect4/game"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrEvaluationFailed marks every failure to obtain a score. A client that
// returned it must not be used again.
var ErrEvaluationFailed = errors.New("remote evaluation failed")

type Client[M comparable, P comparable] struct {
	conn  net.Conn
	r     *bufio.Reader
	w     *bufio.Writer
	codec game.Codec[M, P]

	mu     sync.Mutex
	broken error
	closed bool
}

func Dial[M comparable, P comparable](ctx context.Context, addr string, codec game.Codec[M, P]) (*Client[M, P], error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial evaluation server %s: %w", addr, err)
	}
	return New(conn, codec), nil
}

// New takes ownership of conn.
func New[M comparable, P comparable](conn net.Conn, codec game.Codec[M, P]) *Client[M, P] {
	return &Client[M, P]{
		conn:  conn,
		r:     bufio.NewReader(conn),
		w:     bufio.NewWriter(conn),
		codec: codec,
	}
}

// Evaluate asks the server to score move in position g, searching depth plies,
// from the point of view of the player to move in g. Jobs on one client run
// one at a time.
func (c *Client[M, P]) Evaluate(ctx context.Context, g game.Game[M, P], move M, depth int) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, fmt.Errorf("%w: client closed", ErrEvaluationFailed)
	}
	if c.broken != nil {
		return 0, fmt.Errorf("%w: connection unusable after %v", ErrEvaluationFailed, c.broken)
	}

	score, err := c.roundTrip(ctx, g, move, depth)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		c.broken = err
		c.conn.Close()
		log.Warn().Err(err).Str("server", c.conn.RemoteAddr().String()).Msg("remote evaluation failed")
		return 0, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}
	return score, nil
}

func (c *Client[M, P]) roundTrip(ctx context.Context, g game.Game[M, P], move M, depth int) (float64, error) {
	state, err := c.codec.Encode(g)
	if err != nil {
		return 0, err
	}
	encodedMove, err := json.Marshal(move)
	if err != nil {
		return 0, fmt.Errorf("failed to encode move %v: %w", move, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := communication.WriteFlag(c.w, true); err != nil {
		return 0, err
	}
	if err := communication.WriteFrame(c.w, state); err != nil {
		return 0, err
	}
	if err := communication.WriteDepth(c.w, depth); err != nil {
		return 0, err
	}
	if err := communication.WriteFrame(c.w, encodedMove); err != nil {
		return 0, err
	}
	if err := c.w.Flush(); err != nil {
		return 0, err
	}

	score, err := communication.ReadScore(c.r)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(score) || score < -1 || score > 1 {
		return 0, fmt.Errorf("score %v out of range", score)
	}
	return score, nil
}

// Close ends the session with the server and releases the connection.
func (c *Client[M, P]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.broken != nil {
		return nil
	}
	defer c.conn.Close()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := communication.WriteFlag(c.w, false); err != nil {
		return err
	}
	return c.w.Flush()
}
