// Command translator-service is a development stand-in for the real
// translation backend. It accepts uploads, streams synthetic progress over
// the same websocket protocol, and serves the "translated" result (the
// original document unchanged) for download. Useful for running the full
// aiPDF stack without the production translation service.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger = slog.Default()

// task is one accepted translation
type task struct {
	id         string
	path       string
	targetLang string
	started    time.Time
	duration   time.Duration
}

// progress reports how far the synthetic translation has come
func (t *task) progress() int {
	elapsed := time.Since(t.started)
	if elapsed >= t.duration {
		return 100
	}
	return int(float64(elapsed) / float64(t.duration) * 100)
}

// service holds the accepted tasks
type service struct {
	storageDir string
	duration   time.Duration

	mu    sync.Mutex
	tasks map[string]*task
}

var upgrader = websocket.Upgrader{
	// The stub runs next to the dev frontend on another port
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8002"
	}

	storageDir, err := os.MkdirTemp("", "translator-service")
	if err != nil {
		Logger.Error("Failed to create storage directory", "error", err)
		os.Exit(1)
	}

	duration := 5 * time.Second
	if raw := os.Getenv("TRANSLATE_SECONDS"); raw != "" {
		if parsed, err := time.ParseDuration(raw + "s"); err == nil {
			duration = parsed
		}
	}

	svc := &service{
		storageDir: storageDir,
		duration:   duration,
		tasks:      make(map[string]*task),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORS())

	e.GET("/health", svc.health)
	e.POST("/api/translate", svc.translate)
	e.GET("/ws/progress/:id/", svc.progressSocket)
	e.GET("/api/download/:id", svc.download)

	Logger.Info("Starting translator service", "port", port, "storage", storageDir)
	if err := e.Start(":" + port); err != nil {
		Logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func (svc *service) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// translate accepts a document and starts a synthetic translation
func (svc *service) translate(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "No document uploaded",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Unable to read uploaded document",
		})
	}
	defer src.Close()

	id := ulid.Make().String()
	path := filepath.Join(svc.storageDir, id+".pdf")

	dst, err := os.Create(path)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to store document",
		})
	}
	if _, err := dst.ReadFrom(src); err != nil {
		dst.Close()
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to store document",
		})
	}
	dst.Close()

	accepted := &task{
		id:         id,
		path:       path,
		targetLang: c.FormValue("target_lang"),
		started:    time.Now(),
		duration:   svc.duration,
	}
	svc.mu.Lock()
	svc.tasks[id] = accepted
	svc.mu.Unlock()

	Logger.Info("Accepted translation", "taskID", id, "file", fileHeader.Filename, "targetLang", accepted.targetLang)
	return c.JSON(http.StatusAccepted, map[string]string{"taskId": id})
}

// progressSocket streams {"progress": N} frames until the task completes
func (svc *service) progressSocket(c echo.Context) error {
	svc.mu.Lock()
	accepted, ok := svc.tasks[c.Param("id")]
	svc.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Unknown task",
		})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}
	defer conn.Close()

	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		progress := accepted.progress()
		if err := conn.WriteJSON(map[string]int{"progress": progress}); err != nil {
			return nil // client went away
		}
		if progress >= 100 {
			break
		}
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	return nil
}

// download serves the translated document once the task has completed
func (svc *service) download(c echo.Context) error {
	svc.mu.Lock()
	accepted, ok := svc.tasks[c.Param("id")]
	svc.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Unknown task",
		})
	}
	if accepted.progress() < 100 {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": "Translation still in progress",
		})
	}
	return c.Attachment(accepted.path, "translated.pdf")
}
