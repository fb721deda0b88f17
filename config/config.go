// Package config resolves runtime settings from the environment with
// hardcoded defaults matching the original deployment.
package config

import (
	"os"
	"strconv"
)

// ModelSlot names one registry entry and where its weights live.
type ModelSlot struct {
	Name         string
	Path         string
	FallbackPath string
}

type Config struct {
	ListenAddr string

	// Slots are the custom-trained weights tried at startup, in order. When
	// none of them load the registry falls back to the generic weights.
	Slots []ModelSlot

	PoolSize      int
	ConfThreshold float32
	IoUThreshold  float32
	HistoryLimit  int

	DetectionLogFile string
}

// FromEnv builds the configuration, letting env vars override defaults.
func FromEnv() Config {
	return Config{
		ListenAddr: envStr("LISTEN_ADDR", "127.0.0.1:1041"),
		Slots: []ModelSlot{
			{
				Name:         "YOLOv8n",
				Path:         envStr("YOLOV8N_MODEL_PATH", "../yolov8n/runs/detect_train/weights/best.onnx"),
				FallbackPath: envStr("YOLOV8N_FALLBACK_PATH", "./weights/yolov8n.onnx"),
			},
			{
				Name:         "YOLOv8s",
				Path:         envStr("YOLOV8S_MODEL_PATH", "../yolov8s/runs/detect_train/weights/best.onnx"),
				FallbackPath: envStr("YOLOV8S_FALLBACK_PATH", "./weights/yolov8s.onnx"),
			},
		},
		PoolSize:         envInt("SESSION_POOL_SIZE", 2),
		ConfThreshold:    envFloat32("CONF_THRESHOLD", 0.25),
		IoUThreshold:     envFloat32("IOU_THRESHOLD", 0.45),
		HistoryLimit:     envInt("HISTORY_LIMIT", 50),
		DetectionLogFile: envStr("DETECTION_LOG_FILE", "detections.log"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
