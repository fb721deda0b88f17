package report

import (
	"strings"
	"testing"
	"time"

	"github.com/marinelab/underwater-detect/models"
)

func sampleDetections() []models.Detection {
	return []models.Detection{
		{Class: "fish", Confidence: 0.8, Color: "#FF6B6B"},
		{Class: "shark", Confidence: 0.6, Color: "#FECA57"},
		{Class: "fish", Confidence: 0.7, Color: "#FF6B6B"},
	}
}

func TestSummaryNoDetections(t *testing.T) {
	got := Summary(nil, "YOLOv8n", 0.5)
	if !strings.Contains(got, "No objects detected") {
		t.Errorf("empty summary missing no-objects text: %q", got)
	}
	if !strings.Contains(got, "confidence threshold") {
		t.Errorf("empty summary missing hint: %q", got)
	}
}

func TestSummary(t *testing.T) {
	got := Summary(sampleDetections(), "YOLOv8s", 0.4267)

	wantLines := []string{
		"## 🎯 Detection Summary",
		"**Model Used:** YOLOv8s",
		"**Inference Time:** 0.43s",
		"**Total Objects:** 3",
		"**Average Confidence:** 0.70",
		"**Fish:** 2",
		"**Shark:** 1",
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestSummaryUnknownClassEmoji(t *testing.T) {
	dets := []models.Detection{{Class: "class_9", Confidence: 0.5}}
	got := Summary(dets, "YOLOv8n", 0.1)
	if !strings.Contains(got, "🔹 **Class_9:** 1") {
		t.Errorf("unknown class line wrong:\n%s", got)
	}
}

func TestChart(t *testing.T) {
	bars := Chart(sampleDetections())

	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	// Ordered by first appearance.
	if bars[0].Class != "fish" || bars[0].Count != 2 || bars[0].Color != "#FF6B6B" {
		t.Errorf("first bar = %+v", bars[0])
	}
	if bars[1].Class != "shark" || bars[1].Count != 1 {
		t.Errorf("second bar = %+v", bars[1])
	}
}

func TestChartUnknownClassColor(t *testing.T) {
	bars := Chart([]models.Detection{
		{Class: "class_9", Confidence: 0.5, Color: "#FFFFFF"},
	})

	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1", len(bars))
	}
	if bars[0].Color != "#888888" {
		t.Errorf("unknown class chart color = %q, want #888888", bars[0].Color)
	}
}

func TestChartEmpty(t *testing.T) {
	if bars := Chart(nil); len(bars) != 0 {
		t.Errorf("Chart(nil) = %v, want empty", bars)
	}
}

func TestHistoryMarkdownEmpty(t *testing.T) {
	if got := HistoryMarkdown(nil); got != "No detection history available." {
		t.Errorf("HistoryMarkdown(nil) = %q", got)
	}
}

func TestHistoryMarkdown(t *testing.T) {
	base := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	entries := make([]models.HistoryEntry, 12)
	for i := range entries {
		entries[i] = models.HistoryEntry{
			Timestamp:     base.Add(time.Duration(i) * time.Minute),
			Model:         "YOLOv8n",
			Detections:    i,
			InferenceTime: 0.25,
		}
	}

	got := HistoryMarkdown(entries)

	if !strings.Contains(got, "## 📈 Detection History") {
		t.Errorf("missing heading:\n%s", got)
	}
	// Newest first, at most ten entries.
	if strings.Count(got, "Model: YOLOv8n") != 10 {
		t.Errorf("want 10 rows, got:\n%s", got)
	}
	if !strings.Contains(got, "**1.** 2025-03-14 09:41:00 | Model: YOLOv8n | Objects: 11 | Time: 0.25s") {
		t.Errorf("newest entry not first:\n%s", got)
	}
	if strings.Contains(got, "Objects: 0 |") || strings.Contains(got, "Objects: 1 |") {
		t.Errorf("entries older than the last ten should be dropped:\n%s", got)
	}
}
