package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoders for uploads
	_ "image/jpeg" //
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marinelab/underwater-detect/annotate"
	"github.com/marinelab/underwater-detect/config"
	"github.com/marinelab/underwater-detect/detections"
	"github.com/marinelab/underwater-detect/detlog"
	"github.com/marinelab/underwater-detect/history"
	"github.com/marinelab/underwater-detect/lgr"
	"github.com/marinelab/underwater-detect/models"
	"github.com/marinelab/underwater-detect/registry"
	"github.com/marinelab/underwater-detect/report"
)

type appState struct {
	cfg     config.Config
	reg     *registry.Registry
	history *history.Buffer
	detLog  *detlog.Writer
}

// DetectResponse is the full payload the detection tab renders from.
type DetectResponse struct {
	RequestID        string             `json:"request_id"`
	Model            string             `json:"model"`
	Count            int                `json:"count"`
	Detections       []models.Detection `json:"detections"`
	ImageBase64      string             `json:"image_base64"`
	MimeType         string             `json:"mime_type"`
	Summary          string             `json:"summary"`
	Chart            []report.ChartBar  `json:"chart"`
	Status           string             `json:"status"`
	InferenceSeconds float64            `json:"inference_seconds"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// detectRequest is the decoded input regardless of transport encoding.
type detectRequest struct {
	imageBytes []byte
	model      string
	conf       float32
	iou        float32
}

func (s *appState) handleDetect(w http.ResponseWriter, r *http.Request) {
	startTotal := time.Now()
	requestID := uuid.NewString()
	timings := &models.ProcessingTimings{RequestID: requestID}

	ctx := r.Context()

	req, err := s.parseDetectRequest(r)
	if err != nil {
		sendErrorResponse(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.imageBytes) == 0 {
		sendErrorResponse(w, "missing_image", MsgNoImage, http.StatusBadRequest)
		return
	}

	modelName := req.model
	if modelName == "" {
		modelName = s.reg.Default()
	}
	if _, ok := s.reg.Get(modelName); !ok {
		sendErrorResponse(w, "unknown_model", fmt.Sprintf(MsgModelUnavailable, modelName), http.StatusBadRequest)
		return
	}

	decodeStart := time.Now()
	img, _, err := image.Decode(bytes.NewReader(req.imageBytes))
	timings.ImageDecode = time.Since(decodeStart)
	if err != nil {
		sendErrorResponse(w, "invalid_image", "Failed to decode image", http.StatusBadRequest)
		return
	}

	session, slot, err := s.reg.Acquire(ctx, modelName)
	if err != nil {
		sendErrorResponse(w, "session_error", err.Error(), http.StatusServiceUnavailable)
		return
	}

	inferStart := time.Now()
	dets, err := detections.ProcessImage(ctx, img, session, detections.Params{
		ConfThreshold: req.conf,
		IoUThreshold:  req.iou,
	}, timings)
	inferenceSeconds := time.Since(inferStart).Seconds()
	if err != nil {
		// The session already failed its retries; let the pool's health
		// check replace it rather than handing it to the next request.
		slot.Pool.Discard(session)
		sendErrorResponse(w, "processing_error", err.Error(), http.StatusInternalServerError)
		return
	}
	slot.Pool.Release(session)

	annotateStart := time.Now()
	annotated := annotate.Draw(img, dets)
	var buf bytes.Buffer
	if err := png.Encode(&buf, annotated); err != nil {
		sendErrorResponse(w, "encoding_error", err.Error(), http.StatusInternalServerError)
		return
	}
	timings.Annotation = time.Since(annotateStart)

	s.history.Append(models.HistoryEntry{
		Timestamp:     time.Now(),
		Model:         modelName,
		Detections:    len(dets),
		InferenceTime: inferenceSeconds,
		Objects:       dets,
	})
	s.detLog.Log(requestID, modelName, dets)

	timings.Total = time.Since(startTotal)
	logTimings(timings)

	response := DetectResponse{
		RequestID:        requestID,
		Model:            modelName,
		Count:            len(dets),
		Detections:       dets,
		ImageBase64:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:         "image/png",
		Summary:          report.Summary(dets, modelName, inferenceSeconds),
		Chart:            report.Chart(dets),
		Status:           fmt.Sprintf(MsgCompleted, inferenceSeconds),
		InferenceSeconds: inferenceSeconds,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// parseDetectRequest accepts multipart form uploads (the UI), JSON with a
// base64 image, or a raw image body with query parameters.
func (s *appState) parseDetectRequest(r *http.Request) (*detectRequest, error) {
	req := &detectRequest{
		conf: s.cfg.ConfThreshold,
		iou:  s.cfg.IoUThreshold,
	}

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		var body struct {
			Image      string   `json:"image"`
			Model      string   `json:"model"`
			Confidence *float32 `json:"confidence"`
			IoU        *float32 `json:"iou"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		data, err := base64.StdEncoding.DecodeString(body.Image)
		if err != nil {
			return nil, err
		}
		req.imageBytes = data
		req.model = body.Model
		if body.Confidence != nil {
			req.conf = clampThreshold(*body.Confidence, req.conf)
		}
		if body.IoU != nil {
			req.iou = clampThreshold(*body.IoU, req.iou)
		}

	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New(MsgNoImage)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		req.imageBytes = data
		req.model = r.FormValue("model")
		req.conf = parseThreshold(r.FormValue("confidence"), req.conf)
		req.iou = parseThreshold(r.FormValue("iou"), req.iou)

	default:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		req.imageBytes = data
		req.model = r.URL.Query().Get("model")
		req.conf = parseThreshold(r.URL.Query().Get("confidence"), req.conf)
		req.iou = parseThreshold(r.URL.Query().Get("iou"), req.iou)
	}

	return req, nil
}

func parseThreshold(s string, fallback float32) float32 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return fallback
	}
	return clampThreshold(float32(v), fallback)
}

func clampThreshold(v, fallback float32) float32 {
	if v <= 0 || v > 1 {
		return fallback
	}
	return v
}

func (s *appState) handleHistory(w http.ResponseWriter, _ *http.Request) {
	entries := s.history.Snapshot()
	response := map[string]interface{}{
		"markdown": report.HistoryMarkdown(entries),
		"count":    len(entries),
		"entries":  entries,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *appState) handleModels(w http.ResponseWriter, _ *http.Request) {
	response := map[string]interface{}{
		"models":  s.reg.Names(),
		"default": s.reg.Default(),
		"classes": models.Classes,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *appState) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	pools := map[string]registry.MetricsSnapshot{}
	for _, name := range s.reg.Names() {
		slot, _ := s.reg.Get(name)
		pools[name] = slot.Pool.Metrics()
	}
	response := map[string]interface{}{
		"pools":        pools,
		"history_size": s.history.Len(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *appState) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func logTimings(t *models.ProcessingTimings) {
	lgr.Logger.Debug("processing times",
		slog.String("requestId", t.RequestID),
		slog.Duration("imageDecode", t.ImageDecode),
		slog.Duration("resize", t.Resize),
		slog.Duration("preprocess", t.Preprocess),
		slog.Duration("inference", t.Inference),
		slog.Duration("postprocess", t.Postprocess),
		slog.Duration("suppression", t.Suppression),
		slog.Duration("annotation", t.Annotation),
		slog.Duration("total", t.Total),
	)
}

func sendErrorResponse(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	})
}
