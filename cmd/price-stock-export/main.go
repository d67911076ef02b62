// Package main runs the merge once for a region and writes the CSV to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fairyhunter13/price-stock-merger/internal/di"
	"github.com/fairyhunter13/price-stock-merger/internal/obs"
)

func main() {
	region := flag.String("region", "UK", "region code to export")
	out := flag.String("out", "", "output directory (default OUTPUT_DIR)")
	flag.Parse()

	path, err := run(*region, *out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export %s: %v\n", *region, err)
		os.Exit(1)
	}
	fmt.Println(path)
}

func run(region, out string) (string, error) {
	injector := di.NewContainer()
	defer func() { _ = injector.Shutdown() }()

	cfg, svc, err := di.BootstrapExport(injector)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = cfg.OutputDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, err := svc.WriteFile(ctx, region, out)
	if err != nil {
		obs.Logger.Error("export_error", "region", region, "error", err)
		return "", err
	}
	return path, nil
}
