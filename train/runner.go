package train

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"
)

// CommandRunner executes one external command and returns its combined
// output. Swapped out in tests.
type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

func execCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Runner walks one model through train, validate, predict, and the final
// validation over the held-out test split.
type Runner struct {
	opts    Options
	baseDir string
	now     func() time.Time
	run     CommandRunner
}

func NewRunner(baseDir string, opts Options) *Runner {
	return &Runner{
		opts:    opts,
		baseDir: baseDir,
		now:     time.Now,
		run:     execCommand,
	}
}

// Run executes the full sequence. Metric-extraction failures are reported
// and skipped; command failures abort.
func (r *Runner) Run(ctx context.Context) error {
	// 1. Train
	if _, err := r.run(ctx, "yolo", r.opts.trainArgs()...); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	best := filepath.Join("runs", "detect_train", "weights", "best.pt")

	// 2. Validate and report mAP50
	out, err := r.run(ctx, "yolo", r.opts.valArgs(best, r.opts.DataYAML, "detect_val")...)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if map50, err := ExtractMAP50(out); err != nil {
		fmt.Println("Could not extract mAP50 from validation results.", err)
	} else {
		fmt.Printf("Validation mAP50: %.2f out of 100\n", map50*100)
	}

	// 3. Predict over the test images into a dated directory
	testImages, err := filepath.Abs(filepath.Join(r.baseDir, "test", "images"))
	if err != nil {
		return fmt.Errorf("resolve test images dir: %w", err)
	}
	predictedDir, err := filepath.Abs(filepath.Join(r.baseDir, fmt.Sprintf("predicted_images_%s", r.now().Format("20060102"))))
	if err != nil {
		return fmt.Errorf("resolve predictions dir: %w", err)
	}
	if _, err := r.run(ctx, "yolo", r.opts.predictArgs(best, testImages, predictedDir)...); err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	fmt.Println("Training, validation, and prediction complete!")
	fmt.Printf("Predictions saved to: %s\n", predictedDir)

	// 4. Evaluate on the test split via a generated label map
	testRoot, err := filepath.Abs(filepath.Join(r.baseDir, "test"))
	if err != nil {
		return fmt.Errorf("resolve test dir: %w", err)
	}
	labelMapPath, err := filepath.Abs(filepath.Join(r.baseDir, "test_data.yaml"))
	if err != nil {
		return fmt.Errorf("resolve label map path: %w", err)
	}
	if err := WriteTestLabelMap(labelMapPath, testRoot); err != nil {
		return err
	}

	out, err = r.run(ctx, "yolo", r.opts.valArgs(best, labelMapPath, "detect_test_val")...)
	if err != nil {
		return fmt.Errorf("test validation failed: %w", err)
	}
	if map50, err := ExtractMAP50(out); err != nil {
		fmt.Println("Could not extract mAP50 from test set validation results.", err)
	} else {
		fmt.Printf("Test set mAP50: %.2f out of 100\n", map50*100)
	}

	return nil
}
