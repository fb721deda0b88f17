package models

import "time"

// Detection is a single detected object in the coordinate space of the
// original (pre-resize) image.
type Detection struct {
	Class      string   `json:"class"`
	Confidence float32  `json:"confidence"`
	BBox       [4]int32 `json:"bbox"`
	Color      string   `json:"color"`
}

// ProcessingTimings carries per-stage durations for one request.
type ProcessingTimings struct {
	RequestID   string
	ImageDecode time.Duration
	Resize      time.Duration
	Preprocess  time.Duration
	Inference   time.Duration
	Postprocess time.Duration
	Suppression time.Duration
	Annotation  time.Duration
	Total       time.Duration
}

// HistoryEntry is the metadata kept per successful inference run.
type HistoryEntry struct {
	Timestamp     time.Time   `json:"timestamp"`
	Model         string      `json:"model"`
	Detections    int         `json:"detections"`
	InferenceTime float64     `json:"inference_time"`
	Objects       []Detection `json:"objects"`
}
