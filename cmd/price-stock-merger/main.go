// Package main boots the price-stock-merger HTTP server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fairyhunter13/price-stock-merger/internal/di"
	"github.com/fairyhunter13/price-stock-merger/internal/obs"
)

func main() {
	injector := di.NewContainer()

	if _, err := di.BootstrapServer(injector); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	if err := injector.Shutdown(); err != nil {
		obs.Logger.Error("shutdown_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
