package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"telemetry-dashboard/app/src/domain"
	"telemetry-dashboard/app/src/infra"
	"telemetry-dashboard/app/src/render"
	"telemetry-dashboard/app/src/shared/constants"
)

const (
	sceneVersionHeader = "X-Scene-Version"
	streamHeartbeat    = 15 * time.Second
)

// PlotRenderer draws a scene into static images.
type PlotRenderer interface {
	PNG(scene domain.Scene) ([]byte, error)
	RGB565(scene domain.Scene) ([]byte, error)
}

// handler contains the HTTP handlers and shared dependencies for the REST API.
type handler struct {
	service   domain.DashboardService
	renderer  PlotRenderer
	logger    *infra.Logger
	heartbeat time.Duration
}

func registerRoutes(router chi.Router, h *handler) {
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		h.logger.Debugf(r.Context(), "health check OK")
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Get("/healthz", h.handleHealthz)

	router.Route("/api", func(r chi.Router) {
		r.Get("/scene", h.handleScene)
		r.Get("/scene/stream", h.handleSceneStream)
		r.Get("/snapshot", h.handleSnapshot)
		r.Get("/status", h.handleStatus)
	})

	router.Get("/plot.png", h.handlePlotPNG)
	router.Get("/plot.bin", h.handlePlotBin)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type snapshotResponse struct {
	domain.MetricsSnapshot
	UpdatedAt string `json:"updated_at,omitempty"`
}

type statusResponse struct {
	Healthy bool `json:"healthy"`
	domain.DashboardStatus
}

// handleHealthz reports 503 while any feed is stale.
func (h *handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !h.service.Status().Healthy() {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "stale"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleScene(w http.ResponseWriter, r *http.Request) {
	scene := h.service.Scene()
	w.Header().Set(sceneVersionHeader, strconv.FormatUint(scene.Version, 10))
	h.writeJSON(w, http.StatusOK, scene)
}

// handleSceneStream pushes one "scene" Server-Sent Event per published scene,
// starting with the current one.
func (h *handler) handleSceneStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	scenes := h.service.SubscribeScenes(ctx)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case scene, open := <-scenes:
			if !open {
				return
			}
			payload, err := json.Marshal(scene)
			if err != nil {
				h.logger.Errorf(ctx, "encode scene %d: %v", scene.Version, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: scene\ndata: %s\n\n", scene.Version, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	view := h.service.Snapshot()
	resp := snapshotResponse{MetricsSnapshot: view.Snapshot}
	if !view.UpdatedAt.IsZero() {
		resp.UpdatedAt = view.UpdatedAt.UTC().Format(constants.TimeFormat)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status()
	h.writeJSON(w, http.StatusOK, statusResponse{Healthy: status.Healthy(), DashboardStatus: status})
}

func (h *handler) handlePlotPNG(w http.ResponseWriter, r *http.Request) {
	scene := h.service.Scene()
	body, err := h.renderer.PNG(scene)
	if err != nil {
		h.logger.Errorf(r.Context(), "render png: %v", err)
		h.writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	h.writeBinary(w, "image/png", scene.Version, body)
}

// handlePlotBin serves raw RGB565 pixels for the TFT display. An empty body
// with 404 tells the device that no data exists yet.
func (h *handler) handlePlotBin(w http.ResponseWriter, r *http.Request) {
	scene := h.service.Scene()
	body, err := h.renderer.RGB565(scene)
	switch {
	case errors.Is(err, render.ErrNoPoints):
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusNotFound)
		return
	case err != nil:
		h.logger.Errorf(r.Context(), "render rgb565: %v", err)
		h.writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	h.writeBinary(w, "application/octet-stream", scene.Version, body)
}

func (h *handler) writeBinary(w http.ResponseWriter, contentType string, version uint64, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set(sceneVersionHeader, strconv.FormatUint(version, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message, Code: status})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
