// Package main provides the sparsednn dataset converter CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	"github.com/born-ml/sparsednn/loader"
)

const version = "v0.0.1-dev"

func usage() {
	fmt.Println("sparsednn - sparse network dataset converter")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version             Show version")
	fmt.Println("  convert <config>    Convert weights, inputs and labels to binary files")
	fmt.Println("  inspect <config>    Load the binary weights and print the arena layout")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	logger := level.NewFilter(log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)), level.AllowInfo())
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd := os.Args[1]; cmd {
	case "version":
		fmt.Printf("sparsednn %s\n", version)
		return
	case "convert", "inspect":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		err = run(ctx, cmd, os.Args[2], logger)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		level.Error(logger).Log("msg", "command failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd, configPath string, logger log.Logger) error {
	fs := afero.NewOsFs()
	cfg, err := loader.LoadConfig(fs, configPath)
	if err != nil {
		return err
	}
	c, err := loader.NewConverter(cfg, fs, logger, nil)
	if err != nil {
		return err
	}

	switch cmd {
	case "convert":
		if err := c.ConvertWeights(ctx); err != nil {
			return err
		}
		if err := c.ConvertInputs(ctx); err != nil {
			return err
		}
		return c.ConvertLabels(ctx)
	default:
		a, err := c.LoadWeightsBinary(ctx)
		if err != nil {
			return err
		}
		l := a.Layout()
		fmt.Printf("layers=%d rows=%d slabs=%d max_nnz=%d pad=%d kind=%s stride_words=%d\n",
			a.Layers(), l.Rows, l.SlabCount, l.MaxNNZ, l.Pad, l.Kind, a.Stride())
		return nil
	}
}
