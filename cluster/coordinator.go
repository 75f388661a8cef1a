// Package cluster splits one evaluation between a coordinator and a pool of
// workers. The coordinator searches the first plies itself, hands the frontier
// sub-trees out one at a time to whichever worker asks, and folds the returned
// scores back with the same walk a sequential search uses.
package cluster

import (
	"connect4/communication"
	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/meta"
	"connect4/searcher"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var (
	ErrProtocol  = errors.New("protocol violation")
	ErrNoWorkers = errors.New("no workers")
)

// finishTimeout bounds the delivery of SESSION_FINISHED after a session was
// cancelled.
const finishTimeout = 5 * time.Second

// WorkerIDs returns the endpoint names worker-1 to worker-n.
func WorkerIDs(n int) []string {
	return lo.Times(n, func(i int) string {
		return fmt.Sprintf("worker-%d", i+1)
	})
}

type Option func(s *settings)

type settings struct {
	splitDepth int
}

// WithSplitDepth sets how many plies the coordinator searches before handing
// sub-trees to workers.
func WithSplitDepth(depth int) Option {
	return func(s *settings) {
		s.splitDepth = depth
	}
}

type Result struct {
	Score  float64
	Metric metrics.SessionMetric
}

type Coordinator[M comparable, P comparable] struct {
	comm       communication.Communicator
	codec      game.Codec[M, P]
	workers    []string
	splitDepth int

	mu      sync.Mutex // One session at a time
	session uint64
}

func NewCoordinator[M comparable, P comparable](comm communication.Communicator, codec game.Codec[M, P], workerIDs []string, options ...Option) *Coordinator[M, P] {
	s := settings{ // Default values
		splitDepth: meta.SPLIT_DEPTH,
	}
	for _, option := range options {
		option(&s)
	}
	if s.splitDepth < 1 {
		panic(fmt.Sprintf("split depth must be positive, got %d", s.splitDepth))
	}
	if len(lo.Uniq(workerIDs)) != len(workerIDs) {
		panic(fmt.Sprintf("duplicate worker ids in %v", workerIDs))
	}
	if lo.Contains(workerIDs, comm.ID()) {
		panic(fmt.Sprintf("coordinator %q is also listed as a worker", comm.ID()))
	}
	return &Coordinator[M, P]{
		comm:       comm,
		codec:      codec,
		workers:    append([]string(nil), workerIDs...),
		splitDepth: s.splitDepth,
	}
}

func (c *Coordinator[M, P]) SplitDepth() int {
	return c.splitDepth
}

func (c *Coordinator[M, P]) Workers() []string {
	return append([]string(nil), c.workers...)
}

// Evaluate has the shape of server.EvaluateFunc so a coordinator can back a
// remote evaluation server.
func (c *Coordinator[M, P]) Evaluate(ctx context.Context, g game.Game[M, P], move M, depth int) (float64, error) {
	result, err := c.Session(ctx, g, move, depth)
	return result.Score, err
}

// Session scores move in g, depth plies deep, for the player to move in g. The
// result is exactly the score a sequential search of the same depth returns.
// Searches no deeper than the split depth run locally. g is restored before
// Session returns.
func (c *Coordinator[M, P]) Session(ctx context.Context, g game.Game[M, P], move M, depth int) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if depth < 0 {
		return Result{}, fmt.Errorf("negative search depth %d", depth)
	}
	start := time.Now()
	player := g.CurrentPlayer()
	metric := metrics.SessionMetric{
		Depth:          depth,
		SplitDepth:     c.splitDepth,
		TasksPerWorker: make(map[string]int),
	}

	if depth <= c.splitDepth {
		score, err := searcher.NewBruteForce(g, depth).EvaluateAs(move, player)
		metric.Duration = time.Since(start)
		return Result{Score: score, Metric: metric}, err
	}
	if len(c.workers) == 0 {
		return Result{}, ErrNoWorkers
	}

	tasks, err := searcher.Enumerate(g, move, c.splitDepth)
	if err != nil {
		return Result{}, err
	}
	state, err := c.codec.Encode(g)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode session state: %w", err)
	}

	c.session++
	s := &session[M]{
		id:       c.session,
		pending:  tasks,
		assigned: make(map[string]searcher.Task[M]),
		idle:     make(map[string]bool),
		results:  make(map[searcher.TaskKey]float64, len(tasks)),
		metric:   metric,
	}
	s.metric.Session = s.id
	s.metric.Workers = len(c.workers)
	s.metric.Tasks = len(tasks)
	log.Info().Msgf("Session %d: %v at depth %d, %d tasks for %d workers", s.id, move, depth, len(tasks), len(c.workers))

	err = c.broadcast(ctx, s, state, depth-c.splitDepth)
	if err == nil {
		err = c.run(ctx, s)
	}
	// Workers leave the session even when it failed, so they are ready for
	// the next broadcast.
	if finishErr := c.finish(ctx, s); err == nil {
		err = finishErr
	}
	if err != nil {
		log.Error().Err(err).
			Uint64("session", s.id).
			Int("pending", len(s.pending)).
			Strs("busy", lo.Keys(s.assigned)).
			Int("results", len(s.results)).
			Msg("session aborted")
		return Result{}, fmt.Errorf("session %d: %w", s.id, err)
	}

	score, err := searcher.Reconcile(g, move, player, c.splitDepth, s.results)
	if err != nil {
		return Result{}, fmt.Errorf("session %d: %w", s.id, err)
	}
	s.metric.Duration = time.Since(start)
	log.Info().Msgf("Session %d: score %.4f in %v", s.id, score, s.metric.Duration)
	return Result{Score: score, Metric: s.metric}, nil
}

// session is owned by the scheduling loop of one Session call.
type session[M comparable] struct {
	id       uint64
	pending  []searcher.Task[M]
	queue    []string // Idle workers in request order
	idle     map[string]bool
	assigned map[string]searcher.Task[M]
	results  map[searcher.TaskKey]float64
	metric   metrics.SessionMetric
}

func (c *Coordinator[M, P]) broadcast(ctx context.Context, s *session[M], state []byte, workerDepth int) error {
	for _, worker := range c.workers {
		if err := c.comm.Send(ctx, worker, communication.Message{
			Kind:    communication.BroadcastState,
			Session: s.id,
			State:   state,
		}); err != nil {
			return err
		}
		if err := c.comm.Send(ctx, worker, communication.Message{
			Kind:    communication.BroadcastDepth,
			Session: s.id,
			Depth:   workerDepth,
		}); err != nil {
			return err
		}
	}
	return nil
}

// run is the scheduling loop. It returns once every task has a result and
// every worker is waiting for another task, which can only happen after each
// worker delivered the result of its last grant.
func (c *Coordinator[M, P]) run(ctx context.Context, s *session[M]) error {
	for {
		if err := c.assign(ctx, s); err != nil {
			return err
		}
		if len(s.pending) == 0 && len(s.queue) == len(c.workers) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-c.comm.Inbox():
			if !ok {
				return communication.ErrClosed
			}
			if err := c.handle(s, msg); err != nil {
				return err
			}
		}
	}
}

func (c *Coordinator[M, P]) handle(s *session[M], msg communication.Message) error {
	if msg.Session != s.id {
		log.Debug().Uint64("session", s.id).Uint64("stale", msg.Session).
			Str("from", msg.From).Stringer("kind", msg.Kind).Msg("dropping message of another session")
		return nil
	}
	if !lo.Contains(c.workers, msg.From) {
		return fmt.Errorf("%w: %s from unknown endpoint %q", ErrProtocol, msg.Kind, msg.From)
	}

	switch msg.Kind {
	case communication.TaskRequest:
		if task, ok := s.assigned[msg.From]; ok {
			return fmt.Errorf("%w: %s requested a task while holding %s", ErrProtocol, msg.From, task)
		}
		if s.idle[msg.From] {
			return fmt.Errorf("%w: %s requested twice", ErrProtocol, msg.From)
		}
		s.idle[msg.From] = true
		s.queue = append(s.queue, msg.From)
	case communication.TaskResult:
		task, ok := s.assigned[msg.From]
		if !ok {
			log.Warn().Uint64("session", s.id).Str("worker", msg.From).
				Float64("score", msg.Score).Msg("ignoring result from worker without a task")
			return nil
		}
		if msg.Score < searcher.Loss || msg.Score > searcher.Win {
			return fmt.Errorf("%w: %s returned score %v for %s", ErrProtocol, msg.From, msg.Score, task)
		}
		delete(s.assigned, msg.From)
		s.results[task.Key()] = msg.Score
		s.metric.TasksPerWorker[msg.From]++
	default:
		return fmt.Errorf("%w: unexpected %s from %s", ErrProtocol, msg.Kind, msg.From)
	}
	return nil
}

// assign grants pending tasks to idle workers, first come first served.
func (c *Coordinator[M, P]) assign(ctx context.Context, s *session[M]) error {
	for len(s.queue) > 0 && len(s.pending) > 0 {
		worker, task := s.queue[0], s.pending[0]
		s.queue, s.pending = s.queue[1:], s.pending[1:]

		data, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("failed to encode task %s: %w", task, err)
		}
		delete(s.idle, worker)
		s.assigned[worker] = task
		if err := c.comm.Send(ctx, worker, communication.Message{
			Kind:    communication.TaskGrant,
			Session: s.id,
			Task:    data,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator[M, P]) finish(ctx context.Context, s *session[M]) error {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
		defer cancel()
	}
	var errs []error
	for _, worker := range c.workers {
		if err := c.comm.Send(ctx, worker, communication.Message{
			Kind:    communication.SessionFinished,
			Session: s.id,
		}); err != nil {
			errs = append(errs, fmt.Errorf("failed to finish session on %s: %w", worker, err))
		}
	}
	return errors.Join(errs...)
}
