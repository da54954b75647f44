// Package list parses list service flags and launches the service.
package list

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/demonlist.space/internal/platform/cmd"
	server "github.com/louisbranch/demonlist.space/internal/services/list/app"
)

// Config holds list command configuration.
type Config struct {
	Port int `env:"DEMONLIST_SPACE_LIST_PORT" envDefault:"8095"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The list gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the list command runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceList, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
