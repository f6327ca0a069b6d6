// Package engine is the serving side of aiPDF: it hosts the wasm frontend,
// proxies translation traffic to the backend, renders staged documents to
// page images for the viewer, and keeps the translation history.
package engine

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/zrs99/aipdf/client"
	"github.com/zrs99/aipdf/config"
	"github.com/zrs99/aipdf/history"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger = slog.Default()

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	History      *history.Store
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
	Sessions     *SessionRegistry
	Backend      *client.Client
}

// NewServerHandler wires the handler with its collaborators
func NewServerHandler(e *echo.Echo, serverConfig config.ServerConfig, store *history.Store) *ServerHandler {
	return &ServerHandler{
		History:      store,
		Echo:         e,
		ServerConfig: serverConfig,
		Sessions:     NewSessionRegistry(serverConfig.StagingPath, serverConfig.RendererBackend),
		Backend:      client.New(serverConfig.BackendURL),
	}
}

// Shutdown releases every open viewer session
func (serverHandler *ServerHandler) Shutdown() {
	serverHandler.Sessions.CloseAll()
}
