package detections

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/marinelab/underwater-detect/models"

	"github.com/disintegration/imaging"
)

// Params are the per-request inference knobs surfaced by the UI.
type Params struct {
	ConfThreshold float32
	IoUThreshold  float32
}

// DefaultParams mirrors the UI defaults.
func DefaultParams() Params {
	return Params{
		ConfThreshold: DefaultConfThreshold,
		IoUThreshold:  DefaultIoUThreshold,
	}
}

type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// ProcessImage runs one detection pass over img, retrying transient session
// failures with linear backoff. Boxes come back in original-image pixels.
func ProcessImage(ctx context.Context, img image.Image, model *ModelSession, params Params, timings *models.ProcessingTimings) ([]models.Detection, error) {
	var lastErr error

	for attempt := 1; attempt <= RetryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			dets, err := processImageInternal(img, model, params, timings)
			if err == nil {
				return dets, nil
			}
			lastErr = err

			if attempt < RetryAttempts {
				time.Sleep(time.Duration(attempt) * RetryDelayMs * time.Millisecond)
				continue
			}
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("unknown error")
}

func processImageInternal(img image.Image, model *ModelSession, params Params, timings *models.ProcessingTimings) ([]models.Detection, error) {
	resizeStart := time.Now()
	resized := imaging.Resize(img, InputWidth, InputHeight, imaging.Linear)
	timings.Resize = time.Since(resizeStart)

	prepStart := time.Now()
	model.preprocessor.Process(resized, model.Input.GetData())
	timings.Preprocess = time.Since(prepStart)

	inferStart := time.Now()
	if err := model.Session.Run(); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}
	timings.Inference = time.Since(inferStart)

	postStart := time.Now()
	candidates, err := decodePredictions(model.Output.GetData(), img.Bounds().Dx(), img.Bounds().Dy(), params.ConfThreshold)
	if err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	timings.Postprocess = time.Since(postStart)

	nmsStart := time.Now()
	kept := SuppressOverlaps(candidates, params.IoUThreshold)
	timings.Suppression = time.Since(nmsStart)

	return toDetections(kept), nil
}

// candidate is a raw decoded prediction before suppression.
type candidate struct {
	ClassID    int
	Confidence float32
	BBox       [4]int32
}

// decodePredictions walks the [4+classes, 8400] output plane. YOLOv8 emits
// no objectness channel; the confidence of a cell is its best class score.
func decodePredictions(predictions []float32, originalWidth, originalHeight int, confThreshold float32) ([]candidate, error) {
	expectedSize := OutputChannels * NumPredictions
	if len(predictions) != expectedSize {
		return nil, fmt.Errorf("unexpected predictions length: got %d, want %d", len(predictions), expectedSize)
	}

	candidates := make([]candidate, 0, 100)
	for i := 0; i < NumPredictions; i++ {
		classID := -1
		best := confThreshold
		for c := 0; c < NumClasses; c++ {
			if score := predictions[(4+c)*NumPredictions+i]; score >= best {
				best = score
				classID = c
			}
		}
		if classID < 0 {
			continue
		}

		bbox := calculateBBox(
			predictions[i],
			predictions[NumPredictions+i],
			predictions[2*NumPredictions+i],
			predictions[3*NumPredictions+i],
			float32(originalWidth),
			float32(originalHeight),
		)
		candidates = append(candidates, candidate{
			ClassID:    classID,
			Confidence: best,
			BBox:       bbox,
		})
	}

	sortByConfidence(candidates)
	return candidates, nil
}

// calculateBBox maps a center-format box in model-input pixels back onto the
// original image, clamped to its bounds.
func calculateBBox(cx, cy, w, h, origWidth, origHeight float32) [4]int32 {
	scaleX := origWidth / InputWidth
	scaleY := origHeight / InputHeight

	x1 := (cx - w/2) * scaleX
	y1 := (cy - h/2) * scaleY
	x2 := (cx + w/2) * scaleX
	y2 := (cy + h/2) * scaleY

	return [4]int32{
		int32(max32(0, x1)),
		int32(max32(0, y1)),
		int32(min32(origWidth, x2)),
		int32(min32(origHeight, y2)),
	}
}

func toDetections(kept []candidate) []models.Detection {
	dets := make([]models.Detection, 0, len(kept))
	for _, c := range kept {
		name := models.ClassName(c.ClassID)
		dets = append(dets, models.Detection{
			Class:      name,
			Confidence: c.Confidence,
			BBox:       c.BBox,
			Color:      models.ClassColor(name),
		})
	}
	return dets
}

func sortByConfidence(candidates []candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
