// Training driver for the YOLOv8s underwater model: an explicit batch size,
// library-default augmentation, everything else hardcoded.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/xerrors"

	"github.com/marinelab/underwater-detect/lgr"
	"github.com/marinelab/underwater-detect/train"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := train.Options{
		DataYAML:  "data.yaml",
		Weights:   "yolov8s.pt",
		Epochs:    100,
		ImageSize: 640,
		Batch:     16,
		Device:    "0",
	}

	runner := train.NewRunner(".", opts)
	if err := runner.Run(ctx); err != nil {
		lgr.Logger.Error("training run failed", slog.Any("error", xerrors.New(err.Error())))
		os.Exit(1)
	}
}
