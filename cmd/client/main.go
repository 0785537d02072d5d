package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maati-dev/maati/internal/client/api"
	"github.com/maati-dev/maati/internal/client/cli"
	"github.com/maati-dev/maati/internal/client/iocli"
	"github.com/maati-dev/maati/internal/client/session"
	"github.com/maati-dev/maati/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "maati-client.db", "Path to local session store")
	village := flag.String("village", "", "Village ID to operate on (default: session's selection)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	if err := run(args[0], args[1:], *serverURL, *dbPath, *village); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, serverURL, dbPath, village string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := boltdb.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close session store", slog.Any("error", err))
		}
	}()

	sess := session.New(store, session.WithRefreshURL(serverURL+"/api/v1/auth/refresh"))
	defer sess.Close()
	sess.Load(ctx)

	apiClient := api.NewClient(serverURL, api.WithTokenSource(sess))

	c := cli.New(apiClient, sess, iocli.NewStdio(), village)
	return c.Run(ctx, command, args)
}

func printVersion() {
	fmt.Printf("MAATI Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
