// Command docask answers questions from a team's documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docask/internal/adapters/driving/cli"
	"github.com/custodia-labs/docask/internal/app"
)

// Set via -ldflags "-X main.version=...".
var version = "dev"

// envHome overrides ~/.docask.
const envHome = "DOCASK_HOME"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetLoader(func(ctx context.Context) (*cli.Services, error) {
		a, err := app.New(ctx, app.Options{ConfigDir: os.Getenv(envHome)})
		if err != nil {
			return nil, err
		}
		return &cli.Services{
			Answers:       a.Answers,
			Settings:      a.Settings,
			Knowledge:     a.Knowledge,
			Profiles:      a.Profiles,
			WatchRegistry: a.WatchRegistry,
			Close:         a.Close,
		}, nil
	})

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
