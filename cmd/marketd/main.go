package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/OscarPele/market-analyzer/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewBuilder().
		WithOptionsFetch().
		WithLogger().
		WithTelemetry(ctx).
		WithRepository(ctx).
		WithFeed().
		WithIngestor().
		WithNotifiers(ctx).
		Build()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(flagsErr)
			return
		}
		fmt.Printf("Error bootstrapping application: %v\n", err)
		os.Exit(1)
	}

	defer app.Stop()

	if err := app.Start(ctx); err != nil {
		app.Logger().Error("Application stopped with error", zap.Error(err))
		return
	}

	app.Logger().Info("Exiting...")
}
