package detections

import (
	"testing"
)

// makePredictions builds an all-zero output plane; cells are filled in by
// the tests.
func makePredictions() []float32 {
	return make([]float32, OutputChannels*NumPredictions)
}

// setCell writes one prediction cell: a center-format box in model-input
// pixels plus a score for a single class.
func setCell(preds []float32, i int, cx, cy, w, h float32, classID int, score float32) {
	preds[i] = cx
	preds[NumPredictions+i] = cy
	preds[2*NumPredictions+i] = w
	preds[3*NumPredictions+i] = h
	preds[(4+classID)*NumPredictions+i] = score
}

func TestDecodePredictionsLength(t *testing.T) {
	_, err := decodePredictions(make([]float32, 10), 640, 640, 0.25)
	if err == nil {
		t.Fatal("expected error for truncated predictions")
	}
}

func TestDecodePredictionsConfidenceFilter(t *testing.T) {
	preds := makePredictions()
	setCell(preds, 0, 320, 320, 100, 100, 0, 0.9)
	setCell(preds, 1, 320, 320, 100, 100, 1, 0.1)

	dets, err := decodePredictions(preds, 640, 640, 0.25)
	if err != nil {
		t.Fatalf("decodePredictions failed: %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("got %d candidates, want 1", len(dets))
	}
	if dets[0].ClassID != 0 {
		t.Errorf("ClassID = %d, want 0", dets[0].ClassID)
	}
	if dets[0].Confidence != 0.9 {
		t.Errorf("Confidence = %f, want 0.9", dets[0].Confidence)
	}
}

func TestDecodePredictionsArgmaxClass(t *testing.T) {
	preds := makePredictions()
	// Two class scores on the same cell: the stronger one wins.
	setCell(preds, 5, 320, 320, 64, 64, 2, 0.4)
	preds[(4+4)*NumPredictions+5] = 0.8 // shark

	dets, err := decodePredictions(preds, 640, 640, 0.25)
	if err != nil {
		t.Fatalf("decodePredictions failed: %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("got %d candidates, want 1", len(dets))
	}
	if dets[0].ClassID != 4 {
		t.Errorf("ClassID = %d, want 4", dets[0].ClassID)
	}
}

func TestDecodePredictionsScaling(t *testing.T) {
	preds := makePredictions()
	// Centered 320x320 box on the 640 input of a 1280x320 original:
	// x scales by 2, y by 0.5.
	setCell(preds, 0, 320, 320, 320, 320, 0, 0.9)

	dets, err := decodePredictions(preds, 1280, 320, 0.25)
	if err != nil {
		t.Fatalf("decodePredictions failed: %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("got %d candidates, want 1", len(dets))
	}

	want := [4]int32{320, 80, 960, 240}
	if dets[0].BBox != want {
		t.Errorf("BBox = %v, want %v", dets[0].BBox, want)
	}
}

func TestDecodePredictionsSortedByConfidence(t *testing.T) {
	preds := makePredictions()
	setCell(preds, 0, 100, 100, 50, 50, 0, 0.5)
	setCell(preds, 1, 400, 400, 50, 50, 1, 0.9)

	dets, err := decodePredictions(preds, 640, 640, 0.25)
	if err != nil {
		t.Fatalf("decodePredictions failed: %v", err)
	}
	if len(dets) != 2 {
		t.Fatalf("got %d candidates, want 2", len(dets))
	}
	if dets[0].Confidence < dets[1].Confidence {
		t.Error("candidates not sorted by descending confidence")
	}
}

func TestCalculateBBoxClamping(t *testing.T) {
	tests := []struct {
		name           string
		cx, cy, w, h   float32
		origW, origH   float32
		want           [4]int32
	}{
		{"inside", 320, 320, 100, 100, 640, 640, [4]int32{270, 270, 370, 370}},
		{"clamped left-top", 10, 10, 100, 100, 640, 640, [4]int32{0, 0, 60, 60}},
		{"clamped right-bottom", 630, 630, 100, 100, 640, 640, [4]int32{580, 580, 640, 640}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBBox(tt.cx, tt.cy, tt.w, tt.h, tt.origW, tt.origH)
			if got != tt.want {
				t.Errorf("calculateBBox() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToDetections(t *testing.T) {
	dets := toDetections([]candidate{
		{ClassID: 0, Confidence: 0.9, BBox: [4]int32{1, 2, 3, 4}},
		{ClassID: 9, Confidence: 0.5, BBox: [4]int32{5, 6, 7, 8}},
	})

	if dets[0].Class != "fish" || dets[0].Color != "#FF6B6B" {
		t.Errorf("known class mapped to %q/%q", dets[0].Class, dets[0].Color)
	}
	if dets[1].Class != "class_9" || dets[1].Color != "#FFFFFF" {
		t.Errorf("unknown class mapped to %q/%q", dets[1].Class, dets[1].Color)
	}
}
