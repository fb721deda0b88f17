// Package report turns detection results into the markdown and chart data
// shown by the UI.
package report

import (
	"fmt"
	"strings"

	"github.com/marinelab/underwater-detect/models"
)

const noDetectionsText = "🔍 **No objects detected**\n\n" +
	"Try adjusting the confidence threshold or uploading a different image."

// Chart bars grey out unknown classes; boxes and summaries use white.
const chartFallbackColor = "#888888"

// ChartBar is one bar of the per-class count chart.
type ChartBar struct {
	Class string `json:"class"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// Summary renders the markdown detection summary for one run.
func Summary(dets []models.Detection, modelName string, inferenceSeconds float64) string {
	if len(dets) == 0 {
		return noDetectionsText
	}

	var avg float32
	for _, d := range dets {
		avg += d.Confidence
	}
	avg /= float32(len(dets))

	var b strings.Builder
	b.WriteString("## 🎯 Detection Summary\n")
	fmt.Fprintf(&b, "**Model Used:** %s\n", modelName)
	fmt.Fprintf(&b, "**Inference Time:** %.2fs\n", inferenceSeconds)
	fmt.Fprintf(&b, "**Total Objects:** %d\n", len(dets))
	fmt.Fprintf(&b, "**Average Confidence:** %.2f\n\n", avg)

	b.WriteString("### 📊 Detected Objects:\n")
	for _, bar := range Chart(dets) {
		emoji, ok := models.ClassEmoji[bar.Class]
		if !ok {
			emoji = "🔹"
		}
		fmt.Fprintf(&b, "%s **%s:** %d\n", emoji, capitalize(bar.Class), bar.Count)
	}

	return b.String()
}

// Chart aggregates detections into per-class bars, classes ordered by first
// appearance.
func Chart(dets []models.Detection) []ChartBar {
	counts := map[string]int{}
	var order []string
	for _, d := range dets {
		if _, seen := counts[d.Class]; !seen {
			order = append(order, d.Class)
		}
		counts[d.Class]++
	}

	bars := make([]ChartBar, 0, len(order))
	for _, class := range order {
		bars = append(bars, ChartBar{
			Class: class,
			Count: counts[class],
			Color: chartColor(class),
		})
	}
	return bars
}

// HistoryMarkdown renders the last ten entries, newest first. Entries must
// be in append order.
func HistoryMarkdown(entries []models.HistoryEntry) string {
	if len(entries) == 0 {
		return "No detection history available."
	}

	if len(entries) > 10 {
		entries = entries[len(entries)-10:]
	}

	var b strings.Builder
	b.WriteString("## 📈 Detection History\n\n")
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(&b, "**%d.** %s | ", len(entries)-i, e.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "Model: %s | ", e.Model)
		fmt.Fprintf(&b, "Objects: %d | ", e.Detections)
		fmt.Fprintf(&b, "Time: %.2fs\n", e.InferenceTime)
	}

	return b.String()
}

func chartColor(class string) string {
	if c, ok := models.ClassColors[class]; ok {
		return c
	}
	return chartFallbackColor
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
