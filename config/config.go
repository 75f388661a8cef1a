// Package config loads the settings of a connect4 process from flags, C4_*
// environment variables and an optional config file, in that precedence.
package config

import (
	"connect4/meta"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Roles of a process.
const (
	RoleServer      = "server"      // Sequential evaluation server
	RoleCoordinator = "coordinator" // Evaluation server backed by a worker pool
	RoleWorker      = "worker"
	RoleEval        = "eval"     // Score every legal move of a position on a server
	RoleSelfPlay    = "selfplay" // CPU against random, locally
	RoleBench       = "bench"
)

var Roles = []string{RoleServer, RoleCoordinator, RoleWorker, RoleEval, RoleSelfPlay, RoleBench}

type Config struct {
	Role string `mapstructure:"role"`

	Listen string `mapstructure:"listen"`
	Remote string `mapstructure:"remote"`

	NatsURL       string   `mapstructure:"nats-url"`
	Subject       string   `mapstructure:"subject"`
	CoordinatorID string   `mapstructure:"coordinator-id"`
	Workers       int      `mapstructure:"workers"`
	WorkerIDs     []string `mapstructure:"worker-ids"`

	Depth      int `mapstructure:"depth"`
	SplitDepth int `mapstructure:"split-depth"`

	Rows    int      `mapstructure:"rows"`
	Cols    int      `mapstructure:"cols"`
	Players []string `mapstructure:"players"`
	Moves   []int    `mapstructure:"moves"`

	Seed   uint64 `mapstructure:"seed"`
	OutDir string `mapstructure:"out-dir"`
	Debug  bool   `mapstructure:"debug"`
}

// Load parses args (without the program name).
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("connect4", pflag.ContinueOnError)
	fs.String("role", RoleServer, "one of "+strings.Join(Roles, ", "))
	fs.String("listen", fmt.Sprintf(":%d", meta.PORT), "address the evaluation server listens on")
	fs.String("remote", fmt.Sprintf("127.0.0.1:%d", meta.PORT), "evaluation server used by the eval role")
	fs.String("nats-url", "nats://127.0.0.1:4222", "NATS server connecting coordinator and workers")
	fs.String("subject", meta.NATS_SUBJECT, "NATS subject prefix of the cluster")
	fs.String("coordinator-id", meta.COORDINATOR_ID, "endpoint name of the coordinator")
	fs.Int("workers", 1, "size of the worker pool (coordinator) or number of workers to run (worker)")
	fs.StringSlice("worker-ids", nil, "explicit worker endpoint names, overrides --workers")
	fs.Int("depth", meta.MAX_DEPTH, "total search depth")
	fs.Int("split-depth", meta.SPLIT_DEPTH, "depth searched by the coordinator before handing out tasks")
	fs.Int("rows", meta.ROWS, "board rows")
	fs.Int("cols", meta.COLS, "board columns")
	fs.StringSlice("players", []string{meta.FIRST_PLAYER, meta.SECOND_PLAYER}, "names of the first and second player")
	fs.IntSlice("moves", nil, "columns played from the empty board to reach the evaluated position")
	fs.Uint64("seed", 1, "seed of the random player")
	fs.String("out-dir", ".", "directory experiment results are written to")
	fs.Bool("debug", false, "debug logging")
	configFile := fs.String("config", "", "config file (yaml, toml or json)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("C4")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if !lo.Contains(Roles, c.Role) {
		errs = append(errs, fmt.Errorf("unknown role %q", c.Role))
	}
	if c.Depth < 0 {
		errs = append(errs, fmt.Errorf("negative depth %d", c.Depth))
	}
	if c.SplitDepth < 1 {
		errs = append(errs, fmt.Errorf("split depth must be positive, got %d", c.SplitDepth))
	}
	if c.Rows < 1 || c.Cols < 1 {
		errs = append(errs, fmt.Errorf("invalid board size %dx%d", c.Rows, c.Cols))
	}
	if len(c.Players) != 2 || c.Players[0] == c.Players[1] {
		errs = append(errs, fmt.Errorf("need two distinct players, got %v", c.Players))
	}
	if len(c.WorkerIDs) == 0 && c.Workers < 1 {
		errs = append(errs, fmt.Errorf("need at least one worker, got %d", c.Workers))
	}
	return errors.Join(errs...)
}
