// Training driver for the YOLOv8n underwater model: heavier augmentation
// and early stopping, everything else hardcoded.
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
		Weights:   "yolov8n.pt",
		Epochs:    100,
		ImageSize: 640,
		Device:    "0",
		Patience:  10,
		Augment: &train.Augmentation{
			Degrees:     10,
			Scale:       0.5,
			Shear:       2,
			Perspective: 0.001,
			FlipUD:      0.5,
			FlipLR:      0.5,
			HSVHue:      0.015,
			HSVSat:      0.7,
			HSVValue:    0.4,
			Mosaic:      1.0,
			Mixup:       0.2,
		},
	}

	runner := train.NewRunner(".", opts)
	if err := runner.Run(ctx); err != nil {
		lgr.Logger.Error("training run failed", slog.Any("error", xerrors.New(err.Error())))
		os.Exit(1)
	}
}
