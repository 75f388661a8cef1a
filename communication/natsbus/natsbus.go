// Package natsbus connects cluster endpoints running in separate processes
// through a NATS server. Every endpoint listens on its own subject,
// <prefix>.<id>, and messages are JSON encoded.
package natsbus

import (
	"connect4/communication"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const pendingSize = 256

type Bus struct {
	nc     *nats.Conn
	prefix string
	id     string

	sub   *nats.Subscription
	raw   chan *nats.Msg
	inbox chan communication.Message
	done  chan struct{}
	once  sync.Once
}

// New subscribes endpoint id on nc. The connection stays owned by the caller.
func New(nc *nats.Conn, prefix, id string) (*Bus, error) {
	if strings.ContainsAny(id, ". *>") || id == "" {
		return nil, fmt.Errorf("invalid endpoint id %q", id)
	}
	b := &Bus{
		nc:     nc,
		prefix: prefix,
		id:     id,
		raw:    make(chan *nats.Msg, pendingSize),
		inbox:  make(chan communication.Message, pendingSize),
		done:   make(chan struct{}),
	}
	// A channel subscription hands messages over in arrival order.
	sub, err := nc.ChanSubscribe(b.subject(id), b.raw)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe %s: %w", b.subject(id), err)
	}
	if err := nc.Flush(); err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("failed to flush subscription: %w", err)
	}
	b.sub = sub
	go b.decode()
	return b, nil
}

func (b *Bus) subject(id string) string {
	return b.prefix + "." + id
}

func (b *Bus) decode() {
	for {
		select {
		case <-b.done:
			return
		case m := <-b.raw:
			var msg communication.Message
			if err := json.Unmarshal(m.Data, &msg); err != nil {
				log.Error().Err(err).Str("subject", m.Subject).Msg("dropping undecodable message")
				continue
			}
			select {
			case b.inbox <- msg:
			case <-b.done:
				return
			}
		}
	}
}

func (b *Bus) ID() string {
	return b.id
}

func (b *Bus) Send(ctx context.Context, to string, msg communication.Message) error {
	select {
	case <-b.done:
		return communication.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg.From = b.id
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", msg.Kind, err)
	}
	if err := b.nc.Publish(b.subject(to), data); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", msg.Kind, to, err)
	}
	return nil
}

func (b *Bus) Inbox() <-chan communication.Message {
	return b.inbox
}

func (b *Bus) Close() error {
	var err error
	b.once.Do(func() {
		close(b.done)
		err = b.sub.Unsubscribe()
	})
	return err
}
