package main

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/marinelab/underwater-detect/lgr"
	"github.com/marinelab/underwater-detect/models"
)

//go:embed web/index.html
var embeddedWeb embed.FS

var indexTemplate = template.Must(template.ParseFS(embeddedWeb, "web/index.html"))

type indexData struct {
	Models        []string
	DefaultModel  string
	Classes       []string
	ConfThreshold float32
}

func (s *appState) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data := indexData{
		Models:        s.reg.Names(),
		DefaultModel:  s.reg.Default(),
		Classes:       models.Classes,
		ConfThreshold: s.cfg.ConfThreshold,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		lgr.Logger.Error("render index", slog.Any("error", err))
	}
}
