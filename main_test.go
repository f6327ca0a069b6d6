package main

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	config "github.com/zrs99/aipdf/config"
	engine "github.com/zrs99/aipdf/engine"
	"github.com/zrs99/aipdf/history"
	"github.com/zrs99/aipdf/webapp"
)

// getBrowser finds an available browser for testing
func getBrowser() (string, error) {
	browsers := []string{"chromium", "chromium-browser", "google-chrome", "chrome"}
	for _, browser := range browsers {
		if path, err := exec.LookPath(browser); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no suitable browser found")
}

// startTestServer brings up the full server on a local port with an
// in-memory history database.
func startTestServer(t *testing.T, port string) *echo.Echo {
	t.Helper()

	serverConfig, logger := config.SetupServer()
	injectGlobals(logger)
	serverConfig.DatabaseType = "memory"
	serverConfig.StagingPath = t.TempDir()

	store, err := history.NewStore(serverConfig)
	if err != nil {
		t.Fatalf("Failed to create history store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))

	serverHandler := engine.NewServerHandler(e, serverConfig, store)
	t.Cleanup(serverHandler.Shutdown)

	if err := serverHandler.SetupRoutes(webapp.Handler()); err != nil {
		t.Fatalf("SetupRoutes failed: %v", err)
	}

	go func() {
		if err := e.Start("127.0.0.1:" + port); err != nil && err != http.ErrServerClosed {
			t.Logf("Server stopped: %v", err)
		}
	}()
	t.Cleanup(func() { e.Shutdown(context.Background()) })

	// Give server time to start
	time.Sleep(2 * time.Second)
	return e
}

// TestFrontendRendering tests that the frontend loads correctly using a headless browser
func TestFrontendRendering(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	browserPath, err := getBrowser()
	if err != nil {
		// Try curl as a fallback
		if _, curlErr := exec.LookPath("curl"); curlErr == nil {
			t.Log("No browser found, will use curl for basic connectivity test")
			testWithCurl(t)
			return
		}
		t.Skip("No browser or curl found, skipping browser test")
	}
	t.Logf("Using browser: %s", filepath.Base(browserPath))

	testPort := "8999"
	startTestServer(t, testPort)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(browserPath),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pageTitle string
	var bodyHTML string

	err = chromedp.Run(ctx,
		chromedp.Navigate(fmt.Sprintf("http://127.0.0.1:%s", testPort)),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Title(&pageTitle),
		chromedp.InnerHTML("body", &bodyHTML),
	)
	if err != nil {
		t.Fatalf("Failed to load page: %v", err)
	}

	if pageTitle == "" {
		t.Error("Page title is empty")
	}
	if len(bodyHTML) < 100 {
		t.Errorf("Body HTML seems too short (%d chars), page may not have rendered properly", len(bodyHTML))
	}

	t.Logf("Frontend test passed! Page title: %s, Body length: %d chars", pageTitle, len(bodyHTML))
}

// testWithCurl performs a basic connectivity test using curl
func testWithCurl(t *testing.T) {
	testPort := "8998"
	startTestServer(t, testPort)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "curl", "-s", "-o", "/dev/null", "-w", "%{http_code}",
		fmt.Sprintf("http://127.0.0.1:%s/", testPort)).Output()
	if err != nil {
		t.Fatalf("curl failed: %v", err)
	}
	if string(out) != "200" {
		t.Errorf("Expected HTTP 200 from the home page, got %s", out)
	}

	out, err = exec.CommandContext(ctx, "curl", "-s",
		fmt.Sprintf("http://127.0.0.1:%s/api/languages", testPort)).Output()
	if err != nil {
		t.Fatalf("curl failed: %v", err)
	}
	if len(out) == 0 || out[0] != '[' {
		t.Errorf("Expected a JSON array from /api/languages, got %s", out)
	}

	t.Log("Basic connectivity test passed")
}
