// Package main starts the userdirectory REST process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	userdirectorycmd "github.com/louisbranch/userdesk/internal/cmd/userdirectory"
	entrypoint "github.com/louisbranch/userdesk/internal/platform/cmd"
)

func main() {
	cfg, err := userdirectorycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceUserDirectory))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := userdirectorycmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
