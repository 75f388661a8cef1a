package cluster

import (
	"connect4/communication"
	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/searcher"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// errSuperseded ends a session whose coordinator already broadcast the next one.
var errSuperseded = errors.New("session superseded")

// Worker evaluates the frontier tasks it is granted. It asks for one task at a
// time and never answers a grant it did not request.
type Worker[M comparable, P comparable] struct {
	comm        communication.Communicator
	codec       game.Codec[M, P]
	coordinator string
	metrics     metrics.Collector

	held *communication.Message // Broadcast received while still in a session
}

func NewWorker[M comparable, P comparable](comm communication.Communicator, codec game.Codec[M, P], coordinatorID string) *Worker[M, P] {
	return &Worker[M, P]{
		comm:        comm,
		codec:       codec,
		coordinator: coordinatorID,
		metrics:     metrics.NewCollector(),
	}
}

func (w *Worker[M, P]) ID() string {
	return w.comm.ID()
}

// Run serves sessions until ctx is done or the transport fails. A faulty
// session is abandoned and the worker waits for the next broadcast.
func (w *Worker[M, P]) Run(ctx context.Context) error {
	log.Debug().Str("worker", w.ID()).Msg("worker started")
	for {
		id, g, depth, err := w.awaitBroadcast(ctx)
		if err == nil {
			err = w.serve(ctx, id, g, depth)
		}
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrProtocol), errors.Is(err, errSuperseded):
			log.Error().Err(err).Str("worker", w.ID()).Uint64("session", id).Msg("abandoning session")
		default:
			return err
		}
	}
}

func (w *Worker[M, P]) receive(ctx context.Context) (communication.Message, error) {
	if w.held != nil {
		msg := *w.held
		w.held = nil
		return msg, nil
	}
	select {
	case <-ctx.Done():
		return communication.Message{}, ctx.Err()
	case msg, ok := <-w.comm.Inbox():
		if !ok {
			return communication.Message{}, communication.ErrClosed
		}
		return msg, nil
	}
}

// awaitBroadcast waits for the state and depth of the next session. Anything
// else is left over from an earlier session and dropped.
func (w *Worker[M, P]) awaitBroadcast(ctx context.Context) (uint64, game.Game[M, P], int, error) {
	var (
		session uint64
		g       game.Game[M, P]
	)
	for {
		msg, err := w.receive(ctx)
		if err != nil {
			return 0, nil, 0, err
		}
		if msg.From != w.coordinator {
			log.Warn().Str("worker", w.ID()).Str("from", msg.From).Stringer("kind", msg.Kind).Msg("dropping message from unknown endpoint")
			continue
		}
		switch {
		case msg.Kind == communication.BroadcastState:
			decoded, err := w.codec.Decode(msg.State)
			if err != nil {
				log.Error().Err(err).Str("worker", w.ID()).Uint64("session", msg.Session).Msg("failed to decode session state")
				g = nil
				continue
			}
			session, g = msg.Session, decoded
		case msg.Kind == communication.BroadcastDepth && g != nil && msg.Session == session:
			if msg.Depth < 0 {
				return session, nil, 0, fmt.Errorf("%w: negative depth %d", ErrProtocol, msg.Depth)
			}
			return session, g, msg.Depth, nil
		default:
			log.Debug().Str("worker", w.ID()).Uint64("session", msg.Session).Stringer("kind", msg.Kind).Msg("dropping message outside a session")
		}
	}
}

// serve runs the request, grant, result loop of one session.
func (w *Worker[M, P]) serve(ctx context.Context, session uint64, g game.Game[M, P], depth int) error {
	player := g.CurrentPlayer()
	bf := searcher.NewBruteForce(g, depth, searcher.WithCollector(w.metrics))
	tasks := 0
	for {
		if err := w.comm.Send(ctx, w.coordinator, communication.Message{
			Kind:    communication.TaskRequest,
			Session: session,
		}); err != nil {
			return err
		}

		msg, err := w.awaitGrant(ctx, session)
		if err != nil {
			return err
		}
		if msg.Kind == communication.SessionFinished {
			log.Debug().Str("worker", w.ID()).Uint64("session", session).Int("tasks", tasks).Msg("session finished")
			return nil
		}

		var task searcher.Task[M]
		if err := json.Unmarshal(msg.Task, &task); err != nil {
			return fmt.Errorf("%w: undecodable task: %w", ErrProtocol, err)
		}
		score, err := w.evaluate(bf, g, task, player)
		if err != nil {
			return fmt.Errorf("%w: task %s: %w", ErrProtocol, task, err)
		}
		m := bf.Metrics()
		log.Debug().
			Str("worker", w.ID()).
			Uint64("session", session).
			Stringer("task", task).
			Float64("score", score).
			Int64("nodes", m.Nodes).
			Dur("duration", m.Duration).
			Msg("task evaluated")
		tasks++

		if err := w.comm.Send(ctx, w.coordinator, communication.Message{
			Kind:    communication.TaskResult,
			Session: session,
			Score:   score,
		}); err != nil {
			return err
		}
	}
}

func (w *Worker[M, P]) awaitGrant(ctx context.Context, session uint64) (communication.Message, error) {
	for {
		msg, err := w.receive(ctx)
		if err != nil {
			return msg, err
		}
		if msg.From != w.coordinator || msg.Session < session {
			continue
		}
		if msg.Session > session {
			if msg.Kind == communication.BroadcastState {
				w.held = &msg
				return msg, errSuperseded
			}
			continue
		}
		switch msg.Kind {
		case communication.TaskGrant, communication.SessionFinished:
			return msg, nil
		default:
			return msg, fmt.Errorf("%w: unexpected %s while waiting for a grant", ErrProtocol, msg.Kind)
		}
	}
}

// evaluate replays the task's path on g, scores its target and undoes the path
// again, so g is the broadcast position whenever evaluate returns.
func (w *Worker[M, P]) evaluate(bf *searcher.BruteForce[M, P], g game.Game[M, P], task searcher.Task[M], player P) (float64, error) {
	applied := 0
	defer func() {
		for ; applied > 0; applied-- {
			g.Undo()
		}
	}()
	for _, move := range task.Path {
		if err := g.Apply(move); err != nil {
			return 0, err
		}
		applied++
	}
	return bf.EvaluateAs(task.Target, player)
}
