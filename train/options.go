// Package train drives the external ultralytics `yolo` CLI through the
// fixed train / validate / predict sequence used for the underwater models.
// All numerics live in the external tool; this package assembles arguments,
// writes the generated label-map file, and pulls metrics out of the output.
package train

import (
	"fmt"
	"strconv"
)

// Augmentation holds the optional augmentation overrides passed to training.
type Augmentation struct {
	Degrees     float64
	Scale       float64
	Shear       float64
	Perspective float64
	FlipUD      float64
	FlipLR      float64
	HSVHue      float64
	HSVSat      float64
	HSVValue    float64
	Mosaic      float64
	Mixup       float64
}

// Options are the hardcoded hyperparameters of one training run.
type Options struct {
	DataYAML  string
	Weights   string
	Epochs    int
	ImageSize int
	Batch     int // 0 keeps the library default
	Device    string
	Patience  int // 0 keeps the library default
	Augment   *Augmentation
}

func (o Options) trainArgs() []string {
	args := []string{
		"detect", "train",
		kv("data", o.DataYAML),
		kv("model", o.Weights),
		kv("epochs", strconv.Itoa(o.Epochs)),
		kv("imgsz", strconv.Itoa(o.ImageSize)),
		kv("project", "runs"),
		kv("name", "detect_train"),
		kv("exist_ok", "True"),
		kv("device", o.Device),
	}
	if o.Batch > 0 {
		args = append(args, kv("batch", strconv.Itoa(o.Batch)))
	}
	if o.Patience > 0 {
		args = append(args, kv("patience", strconv.Itoa(o.Patience)))
	}
	if a := o.Augment; a != nil {
		args = append(args,
			kvf("degrees", a.Degrees),
			kvf("scale", a.Scale),
			kvf("shear", a.Shear),
			kvf("perspective", a.Perspective),
			kvf("flipud", a.FlipUD),
			kvf("fliplr", a.FlipLR),
			kvf("hsv_h", a.HSVHue),
			kvf("hsv_s", a.HSVSat),
			kvf("hsv_v", a.HSVValue),
			kvf("mosaic", a.Mosaic),
			kvf("mixup", a.Mixup),
		)
	}
	return args
}

func (o Options) valArgs(weights, dataYAML, runName string) []string {
	return []string{
		"detect", "val",
		kv("data", dataYAML),
		kv("model", weights),
		kv("imgsz", strconv.Itoa(o.ImageSize)),
		kv("project", "runs"),
		kv("name", runName),
		kv("exist_ok", "True"),
		kv("device", o.Device),
	}
}

func (o Options) predictArgs(weights, sourceDir, outputDir string) []string {
	return []string{
		"detect", "predict",
		kv("source", sourceDir),
		kv("model", weights),
		kv("save", "True"),
		kv("project", outputDir),
		kv("name", ""),
		kv("exist_ok", "True"),
		kv("device", o.Device),
	}
}

func kv(key, value string) string {
	return fmt.Sprintf("%s=%s", key, value)
}

func kvf(key string, value float64) string {
	return fmt.Sprintf("%s=%g", key, value)
}
