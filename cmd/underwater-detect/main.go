package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/xerrors"

	"github.com/marinelab/underwater-detect/config"
	"github.com/marinelab/underwater-detect/detlog"
	"github.com/marinelab/underwater-detect/history"
	"github.com/marinelab/underwater-detect/lgr"
	"github.com/marinelab/underwater-detect/registry"
)

const shutdownTimeout = 8 * time.Second

func main() {
	rootCtx := context.Background()
	canxCtx, canxFn := context.WithCancel(rootCtx)
	defer canxFn()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		lgr.Logger.Info("received kill signal", slog.Any("signal", sig))
		canxFn()
	}()

	// Load env vars if we are in DEV mode
	if os.Getenv("RUN_TIME_ENV") == "dev" {
		lgr.Logger.Info("loading env vars from .env file")
		if err := godotenv.Load(); err != nil {
			lgr.Logger.Error("error loading .env file", slog.Any("error", xerrors.New(err.Error())))
			panic("error loading .env file")
		}
	}

	cfg := config.FromEnv()

	ort.SetSharedLibraryPath(sharedLibraryPath())
	if err := ort.InitializeEnvironment(); err != nil {
		lgr.Logger.Error("failed to initialize ONNX environment", slog.Any("error", xerrors.New(err.Error())))
		os.Exit(1)
	}
	defer ort.DestroyEnvironment()

	reg, err := registry.Load(cfg)
	if err != nil {
		lgr.Logger.Error("failed to load models", slog.Any("error", xerrors.New(err.Error())))
		os.Exit(1)
	}
	defer reg.Destroy()

	state := &appState{
		cfg:     cfg,
		reg:     reg,
		history: history.NewBuffer(cfg.HistoryLimit),
		detLog:  detlog.New(cfg.DetectionLogFile),
	}
	defer state.detLog.Close()

	r := mux.NewRouter()
	r.HandleFunc("/", state.handleIndex).Methods("GET")
	r.HandleFunc("/api/detect", state.handleDetect).Methods("POST")
	r.HandleFunc("/api/history", state.handleHistory).Methods("GET")
	r.HandleFunc("/api/models", state.handleModels).Methods("GET")
	r.HandleFunc("/metrics", state.handleMetrics).Methods("GET")
	r.HandleFunc("/healthz", state.handleHealthz).Methods("GET")

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.ListenAddr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	serveResult := make(chan error, 1)
	go func() {
		lgr.Logger.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.Any("models", reg.Names()),
		)
		serveResult <- srv.ListenAndServe()
	}()

	select {
	case <-canxCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(rootCtx, shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lgr.Logger.Error("server shutdown", slog.Any("error", xerrors.New(err.Error())))
		}
	case err := <-serveResult:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lgr.Logger.Error("server exited", slog.Any("error", xerrors.New(err.Error())))
			os.Exit(1)
		}
	}
}

// sharedLibraryPath resolves the ONNX Runtime library for the current OS,
// overridable through ONNXRUNTIME_LIB_PATH.
func sharedLibraryPath() string {
	if p := os.Getenv("ONNXRUNTIME_LIB_PATH"); p != "" {
		return p
	}

	libName := "libonnxruntime.so.1.20.0"
	if runtime.GOOS == "darwin" {
		libName = "libonnxruntime.1.20.0.dylib"
	} else if runtime.GOOS == "windows" {
		libName = "onnxruntime.dll"
	}
	return filepath.Join("lib", libName)
}
