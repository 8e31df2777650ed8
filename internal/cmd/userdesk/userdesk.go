// Package userdesk parses userdesk command flags and launches the web server.
package userdesk

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/userdesk/internal/platform/cmd"
	userdeskserver "github.com/louisbranch/userdesk/internal/services/userdesk"
)

// Config holds userdesk command configuration.
type Config struct {
	HTTPAddr      string        `env:"USERDESK_HTTP_ADDR" envDefault:"localhost:8086"`
	DirectoryURL  string        `env:"USERDESK_DIRECTORY_URL" envDefault:"https://jsonplaceholder.typicode.com/users"`
	RemoteTimeout time.Duration `env:"USERDESK_REMOTE_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DirectoryURL, "directory-url", cfg.DirectoryURL, "User directory collection URL")
	fs.DurationVar(&cfg.RemoteTimeout, "remote-timeout", cfg.RemoteTimeout, "Timeout for each user directory call")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the userdesk web server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceUserDesk, func(ctx context.Context) error {
		server, err := userdeskserver.NewServer(userdeskserver.Config{
			HTTPAddr:      cfg.HTTPAddr,
			DirectoryURL:  cfg.DirectoryURL,
			RemoteTimeout: cfg.RemoteTimeout,
		})
		if err != nil {
			return err
		}
		defer server.Close()
		return server.ListenAndServe(ctx)
	})
}
