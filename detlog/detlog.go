// Package detlog appends every successful detection run to a rolling audit
// log, one JSON object per line.
package detlog

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/natefinch/lumberjack"

	"github.com/marinelab/underwater-detect/lgr"
	"github.com/marinelab/underwater-detect/models"
)

type Writer struct {
	out *lumberjack.Logger
}

func New(filename string) *Writer {
	return &Writer{
		out: &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

type record struct {
	Time       string             `json:"time"`
	RequestID  string             `json:"requestId"`
	Model      string             `json:"model"`
	Detections []models.Detection `json:"detections"`
}

// Log writes one run. Failures are reported but never fail the request.
func (w *Writer) Log(requestID, model string, dets []models.Detection) {
	entry := record{
		Time:       time.Now().Format(time.RFC3339),
		RequestID:  requestID,
		Model:      model,
		Detections: dets,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		lgr.Logger.Warn("marshal detection record", slog.Any("error", err))
		return
	}

	if _, err := w.out.Write(append(data, '\n')); err != nil {
		lgr.Logger.Warn("write detection record", slog.Any("error", err))
	}
}

func (w *Writer) Close() error {
	return w.out.Close()
}
