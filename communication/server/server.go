// Package server runs remote evaluation jobs for clients of package client.
package server

import (
	"bufio"
	"connect4/communication"
	"connect4/game"
	"connect4/searcher"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// EvaluateFunc scores move in g, depth plies deep, for the player to move.
type EvaluateFunc[M comparable, P comparable] func(ctx context.Context, g game.Game[M, P], move M, depth int) (float64, error)

// Sequential evaluates every job with a fresh BruteForce searcher.
func Sequential[M comparable, P comparable]() EvaluateFunc[M, P] {
	return func(_ context.Context, g game.Game[M, P], move M, depth int) (float64, error) {
		return searcher.NewBruteForce(g, depth).Evaluate(move)
	}
}

type Option[M comparable, P comparable] func(s *Server[M, P])

func WithEvaluateFunc[M comparable, P comparable](evaluate EvaluateFunc[M, P]) Option[M, P] {
	return func(s *Server[M, P]) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

type Server[M comparable, P comparable] struct {
	codec    game.Codec[M, P]
	evaluate EvaluateFunc[M, P]
}

func New[M comparable, P comparable](codec game.Codec[M, P], opts ...Option[M, P]) *Server[M, P] {
	s := &Server[M, P]{
		codec:    codec,
		evaluate: Sequential[M, P](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve accepts connections on ln until ctx is done, serving each one in its
// own goroutine. It closes ln and waits for every connection before returning.
func (s *Server[M, P]) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	var conns errgroup.Group
	log.Info().Msgf("Serving evaluations on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			conns.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}
		conns.Go(func() error {
			if err := s.ServeConn(ctx, conn); err != nil {
				log.Warn().Err(err).Str("client", conn.RemoteAddr().String()).Msg("connection aborted")
			}
			return nil
		})
	}
}

// ServeConn runs the jobs of one connection in order until the client sends
// its closing flag. The connection is closed on every return path.
func (s *Server[M, P]) ServeConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	client := conn.RemoteAddr().String()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	for job := 1; ; job++ {
		more, err := communication.ReadFlag(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("client left without closing flag after %d jobs", job-1)
			}
			return err
		}
		if !more {
			log.Debug().Str("client", client).Int("jobs", job-1).Msg("client closed session")
			return nil
		}

		start := time.Now()
		g, move, depth, err := s.readJob(r)
		if err != nil {
			return fmt.Errorf("job %d: %w", job, err)
		}
		score, err := s.evaluate(ctx, g, move, depth)
		if err != nil {
			return fmt.Errorf("job %d: failed to evaluate %v: %w", job, move, err)
		}
		if err := communication.WriteScore(w, score); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
		log.Debug().
			Str("client", client).
			Int("job", job).
			Interface("move", move).
			Int("depth", depth).
			Float64("score", score).
			Dur("duration", time.Since(start)).
			Msg("evaluated")
	}
}

func (s *Server[M, P]) readJob(r io.Reader) (game.Game[M, P], M, int, error) {
	var move M
	state, err := communication.ReadFrame(r)
	if err != nil {
		return nil, move, 0, err
	}
	g, err := s.codec.Decode(state)
	if err != nil {
		return nil, move, 0, err
	}
	depth, err := communication.ReadDepth(r)
	if err != nil {
		return nil, move, 0, err
	}
	encodedMove, err := communication.ReadFrame(r)
	if err != nil {
		return nil, move, 0, err
	}
	if err := json.Unmarshal(encodedMove, &move); err != nil {
		return nil, move, 0, fmt.Errorf("failed to decode move: %w", err)
	}
	return g, move, depth, nil
}
