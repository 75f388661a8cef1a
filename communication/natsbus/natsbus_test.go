package natsbus

import (
	"connect4/cluster"
	"connect4/communication"
	"connect4/game/connectfour"
	"connect4/meta"
	"connect4/searcher"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// connect uses NATS_URL when set and an embedded server otherwise.
func connect(t *testing.T) *nats.Conn {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		opts := natsserver.DefaultTestOptions
		opts.Port = -1
		s := natsserver.RunServer(&opts)
		t.Cleanup(s.Shutdown)
		url = s.ClientURL()
	}
	nc, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return nc
}

func TestBusRoundTrip(t *testing.T) {
	nc := connect(t)
	prefix := fmt.Sprintf("connect4test%d", time.Now().UnixNano())

	a, err := New(nc, prefix, "a")
	require.NoError(t, err)
	defer a.Close()
	b, err := New(nc, prefix, "b")
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, a.Send(ctx, "b", communication.Message{
			Kind:    communication.TaskGrant,
			Session: 7,
			Task:    []byte(`{"path":[1,2],"target":3}`),
			Score:   float64(i),
		}))
	}
	for i := 0; i < 10; i++ {
		select {
		case msg := <-b.Inbox():
			require.Equal(t, "a", msg.From)
			require.Equal(t, uint64(7), msg.Session)
			require.Equal(t, float64(i), msg.Score, "Messages should arrive in send order")
			require.JSONEq(t, `{"path":[1,2],"target":3}`, string(msg.Task))
		case <-time.After(5 * time.Second):
			t.Fatal("message not delivered")
		}
	}

	require.NoError(t, b.Close())
	require.ErrorIs(t, b.Send(ctx, "a", communication.Message{}), communication.ErrClosed)
}

func TestClusterSessionOverNats(t *testing.T) {
	nc := connect(t)
	prefix := fmt.Sprintf("connect4test%d", time.Now().UnixNano())
	ids := cluster.WorkerIDs(2)

	ctx, cancel := context.WithCancel(context.Background())
	workers, workerCtx := errgroup.WithContext(ctx)
	for _, id := range ids {
		bus, err := New(nc, prefix, id)
		require.NoError(t, err)
		defer bus.Close()
		w := cluster.NewWorker[int, string](bus, connectfour.Codec{}, meta.COORDINATOR_ID)
		workers.Go(func() error {
			return w.Run(workerCtx)
		})
	}
	bus, err := New(nc, prefix, meta.COORDINATOR_ID)
	require.NoError(t, err)
	defer bus.Close()
	coordinator := cluster.NewCoordinator[int, string](bus, connectfour.Codec{}, ids, cluster.WithSplitDepth(2))

	g := connectfour.New()
	require.NoError(t, g.Apply(3))
	want, err := searcher.NewBruteForce[int, string](g, 4).Evaluate(2)
	require.NoError(t, err)

	sessionCtx, stop := context.WithTimeout(ctx, 30*time.Second)
	defer stop()
	result, err := coordinator.Session(sessionCtx, g, 2, 4)
	require.NoError(t, err)
	require.Equal(t, want, result.Score, "Scores over NATS should equal the sequential score")

	cancel()
	require.ErrorIs(t, workers.Wait(), context.Canceled)
}

func TestNewRejectsWildcardIDs(t *testing.T) {
	_, err := New(nil, "connect4", "worker.*")
	require.Error(t, err)
	_, err = New(nil, "connect4", "")
	require.Error(t, err)
}
