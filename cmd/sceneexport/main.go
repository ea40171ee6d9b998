package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sceneexport/internal/config"
)

const usage = `usage: sceneexport <command> [flags] [bundle]

commands:
  export   export the selected scenes into a bundle
  verify   check a bundle's schema versions, asset hashes and scene hierarchy
  watch    export, then export again whenever the project changes
  publish  upload a bundle to the configured artifact store

Run "sceneexport <command> -h" for the flags of a command.
`

type command func(ctx context.Context, cfg *config.Config, logger *slog.Logger) error

var commands = map[string]command{
	"export":  runExport,
	"verify":  runVerify,
	"watch":   runWatch,
	"publish": runPublish,
}

func main() {
	log.SetFlags(log.LstdFlags)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		if name == "-h" || name == "--help" || name == "help" {
			fmt.Fprint(os.Stdout, usage)
			return
		}
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(name, os.Args[2:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd(ctx, cfg, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("Interrupted")
			os.Exit(130)
		}
		log.Fatalf("%s: %v", name, err)
	}
}
