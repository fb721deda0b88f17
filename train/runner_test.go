package train

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeCall struct {
	name string
	args []string
}

func fixedTime() time.Time {
	return time.Date(2025, time.March, 14, 9, 41, 0, 0, time.UTC)
}

func TestRunnerSequence(t *testing.T) {
	baseDir := t.TempDir()
	var calls []fakeCall

	r := NewRunner(baseDir, Options{
		DataYAML:  "data.yaml",
		Weights:   "yolov8s.pt",
		Epochs:    100,
		ImageSize: 640,
		Batch:     16,
		Device:    "0",
	})
	r.now = fixedTime
	r.run = func(ctx context.Context, name string, args ...string) (string, error) {
		calls = append(calls, fakeCall{name: name, args: args})
		return "all 127 909 0.803 0.741 0.812 0.512\n", nil
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(calls) != 4 {
		t.Fatalf("got %d commands, want 4", len(calls))
	}
	for i, c := range calls {
		if c.name != "yolo" {
			t.Errorf("call %d ran %q, want yolo", i, c.name)
		}
	}

	wantVerbs := [][2]string{
		{"detect", "train"},
		{"detect", "val"},
		{"detect", "predict"},
		{"detect", "val"},
	}
	for i, w := range wantVerbs {
		if calls[i].args[0] != w[0] || calls[i].args[1] != w[1] {
			t.Errorf("call %d = %v %v, want %v %v", i, calls[i].args[0], calls[i].args[1], w[0], w[1])
		}
	}

	best := filepath.Join("runs", "detect_train", "weights", "best.pt")
	valJoined := strings.Join(calls[1].args, " ")
	if !strings.Contains(valJoined, "model="+best) {
		t.Errorf("validation used wrong weights: %v", valJoined)
	}
	if !strings.Contains(valJoined, "name=detect_val") {
		t.Errorf("validation run name wrong: %v", valJoined)
	}

	predictJoined := strings.Join(calls[2].args, " ")
	wantPredicted := filepath.Join(baseDir, "predicted_images_20250314")
	if !strings.Contains(predictJoined, "project="+wantPredicted) {
		t.Errorf("predictions dir wrong: %v", predictJoined)
	}

	testValJoined := strings.Join(calls[3].args, " ")
	labelMapPath := filepath.Join(baseDir, "test_data.yaml")
	if !strings.Contains(testValJoined, "data="+labelMapPath) {
		t.Errorf("test validation label map wrong: %v", testValJoined)
	}
	if !strings.Contains(testValJoined, "name=detect_test_val") {
		t.Errorf("test validation run name wrong: %v", testValJoined)
	}

	if _, err := os.Stat(labelMapPath); err != nil {
		t.Errorf("label map not written: %v", err)
	}
}

func TestRunnerTrainingFailureAborts(t *testing.T) {
	var calls int
	r := NewRunner(t.TempDir(), Options{Device: "cpu"})
	r.run = func(ctx context.Context, name string, args ...string) (string, error) {
		calls++
		return "", errors.New("exit status 1")
	}

	err := r.Run(context.Background())
	if err == nil {
		t.Fatal("Run succeeded, want error")
	}
	if !strings.Contains(err.Error(), "training failed") {
		t.Errorf("error = %v", err)
	}
	if calls != 1 {
		t.Errorf("ran %d commands after training failure, want 1", calls)
	}
}

func TestRunnerContinuesWithoutMetrics(t *testing.T) {
	var calls int
	r := NewRunner(t.TempDir(), Options{Device: "cpu"})
	r.now = fixedTime
	r.run = func(ctx context.Context, name string, args ...string) (string, error) {
		calls++
		return fmt.Sprintf("run %d: no summary table here\n", calls), nil
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 4 {
		t.Errorf("ran %d commands, want 4", calls)
	}
}
