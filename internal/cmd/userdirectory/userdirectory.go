// Package userdirectory parses userdirectory command flags and launches the
// REST service.
package userdirectory

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/userdesk/internal/platform/cmd"
	userdirectoryserver "github.com/louisbranch/userdesk/internal/services/userdirectory"
)

// Config holds userdirectory command configuration.
type Config struct {
	HTTPAddr string `env:"USERDIRECTORY_HTTP_ADDR" envDefault:"localhost:8095"`
	DBPath   string `env:"USERDIRECTORY_DB_PATH" envDefault:"data/userdirectory.db"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the userdirectory REST service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceUserDirectory, func(ctx context.Context) error {
		server, err := userdirectoryserver.NewServer(userdirectoryserver.Config{
			HTTPAddr: cfg.HTTPAddr,
			DBPath:   cfg.DBPath,
		})
		if err != nil {
			return err
		}
		defer server.Close()
		return server.ListenAndServe(ctx)
	})
}
