package engine

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/zrs99/aipdf/client"
)

// SetupRoutes registers every route: the local viewer and history API, the
// proxied translation backend endpoints, and the go-app wasm frontend.
func (serverHandler *ServerHandler) SetupRoutes(appHandler http.Handler) error {
	e := serverHandler.Echo

	// Viewer API
	uploadLimit := middleware.BodyLimit(fmt.Sprintf("%dM", serverHandler.ServerConfig.MaxUploadMB))
	e.POST("/api/view/open", serverHandler.OpenDocument, uploadLimit)
	e.GET("/api/view/:id", serverHandler.DocumentInfo)
	e.GET("/api/view/:id/page/:page", serverHandler.PageImage)
	e.GET("/api/view/:id/thumb/:page", serverHandler.PageThumbnail)
	e.DELETE("/api/view/:id", serverHandler.CloseDocument)

	// Translation history API
	e.GET("/api/history", serverHandler.GetTranslations)
	e.GET("/api/history/:id", serverHandler.GetTranslation)
	e.POST("/api/history", serverHandler.CreateTranslation)
	e.PATCH("/api/history/:id", serverHandler.UpdateTranslation)
	e.DELETE("/api/history/:id", serverHandler.DeleteTranslation)

	// Target language selector options
	e.GET("/api/languages", serverHandler.GetLanguages)

	// Frontend configuration, available as a global JavaScript variable
	e.GET("/config.js", serverHandler.ConfigJS)

	// Proxy translation traffic to the backend; the websocket progress
	// channel passes through the same proxy.
	backendURL, err := url.Parse(serverHandler.ServerConfig.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}
	proxy := middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{
			{URL: backendURL},
		}),
	})
	e.Group("/api/translate", proxy)
	e.Group("/api/download", proxy)
	e.Group("/ws", proxy)

	// Serve the go-app WASM application
	e.GET("/wasm_exec.js", func(c echo.Context) error {
		return c.File("web/wasm_exec.js")
	})
	e.GET("/app.js", echo.WrapHandler(appHandler))
	e.GET("/app.css", echo.WrapHandler(appHandler))
	e.GET("/manifest.webmanifest", echo.WrapHandler(appHandler))
	e.Static("/web", "web")
	e.File("/webapp/webapp.css", "webapp/webapp.css")

	// go-app handler for all other routes (must be last)
	e.Any("/*", echo.WrapHandler(appHandler))

	return nil
}

// GetLanguages returns the selectable translation targets
func (serverHandler *ServerHandler) GetLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, client.SupportedLanguages())
}

// ConfigJS injects the frontend configuration into the page
func (serverHandler *ServerHandler) ConfigJS(c echo.Context) error {
	frontend := serverHandler.ServerConfig.FrontEndConfig
	configJS := fmt.Sprintf(`
// aiPDF Frontend Configuration
window.aipdfConfig = {
    apiURL: %q,
    defaultTargetLang: %q,
    defaultZoom: %g,
    bufferFactor: %g
};
`, frontend.ServerAPIURL, frontend.DefaultTargetLang, frontend.DefaultZoom, frontend.BufferFactor)
	c.Response().Header().Set("Content-Type", "application/javascript")
	return c.String(http.StatusOK, configJS)
}
