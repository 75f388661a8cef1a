package agent

import (
	"connect4/communication/client"
	"connect4/game/connectfour"
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const (
	dialAttempts = 10
	dialDelay    = 500 * time.Millisecond
)

// Peers may start in any order, so connecting retries with backoff. Jobs
// themselves are never retried.
func dialOptions(ctx context.Context, peer string) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(dialAttempts),
		retry.Delay(dialDelay),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Warn().Err(err).Uint("attempt", n+1).Str("peer", peer).Msg("connection failed, trying again")
			return retry.BackOffDelay(n, err, config)
		}),
	}
}

func connectNats(ctx context.Context, url string) (*nats.Conn, error) {
	return retry.DoWithData(func() (*nats.Conn, error) {
		return nats.Connect(url, nats.Name("connect4"))
	}, dialOptions(ctx, url)...)
}

func dialServer(ctx context.Context, addr string) (*client.Client[int, string], error) {
	return retry.DoWithData(func() (*client.Client[int, string], error) {
		return client.Dial[int, string](ctx, addr, connectfour.Codec{})
	}, dialOptions(ctx, addr)...)
}
