package communication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind tags a coordinator/worker protocol message.
type Kind uint8

const (
	BroadcastState Kind = iota + 1
	BroadcastDepth
	TaskRequest
	TaskGrant
	TaskResult
	SessionFinished
)

func (k Kind) String() string {
	switch k {
	case BroadcastState:
		return "BROADCAST_STATE"
	case BroadcastDepth:
		return "BROADCAST_DEPTH"
	case TaskRequest:
		return "TASK_REQUEST"
	case TaskGrant:
		return "TASK_GRANT"
	case TaskResult:
		return "TASK_RESULT"
	case SessionFinished:
		return "SESSION_FINISHED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(k))
	}
}

// Message is one protocol message. Which payload field is set depends on Kind:
// State for BroadcastState, Depth for BroadcastDepth, Task for TaskGrant and
// Score for TaskResult.
type Message struct {
	Kind    Kind            `json:"kind"`
	From    string          `json:"from"`
	Session uint64          `json:"session"`
	State   []byte          `json:"state,omitempty"`
	Depth   int             `json:"depth,omitempty"`
	Task    json.RawMessage `json:"task,omitempty"`
	Score   float64         `json:"score,omitempty"`
}

// Clone returns a copy that shares no memory with m.
func (m Message) Clone() Message {
	c := m
	if m.State != nil {
		c.State = append([]byte(nil), m.State...)
	}
	if m.Task != nil {
		c.Task = append(json.RawMessage(nil), m.Task...)
	}
	return c
}

var ErrClosed = errors.New("communicator closed")

// Communicator is an addressable endpoint of a cluster. Send stamps From with
// the endpoint's ID; messages from one sender to one receiver arrive in the
// order they were sent.
type Communicator interface {
	ID() string
	Send(ctx context.Context, to string, msg Message) error
	Inbox() <-chan Message
	Close() error
}
