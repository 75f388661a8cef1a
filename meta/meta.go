// meta/meta.go
package meta

// FIRST_PLAYER and SECOND_PLAYER name the default players.
const FIRST_PLAYER = "Alice"
const SECOND_PLAYER = "Bob"

// ROWS and COLS define the standard Connect Four board.
const ROWS = 6
const COLS = 7

// MAX_ROWS and MAX_COLS bound the boards accepted from other processes.
const MAX_ROWS = 64
const MAX_COLS = 64

// MAX_DEPTH is the default total search depth of an evaluation.
const MAX_DEPTH = 10

// SPLIT_DEPTH is the depth searched by the coordinator before handing the
// remaining depth to workers.
const SPLIT_DEPTH = 4

// PORT is the default TCP port of the remote evaluation service.
const PORT = 4444

// NATS_SUBJECT prefixes the per-endpoint subjects of a cluster.
const NATS_SUBJECT = "connect4"

// COORDINATOR_ID is the endpoint name of the coordinator in a cluster.
const COORDINATOR_ID = "coordinator"

// MAX_TURNS bounds a self-play game.
const MAX_TURNS = 300
