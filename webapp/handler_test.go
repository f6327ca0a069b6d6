package webapp

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestHandlerRoutes tests that all expected routes are registered
func TestHandlerRoutes(t *testing.T) {
	handler := Handler()

	tests := []struct {
		name string
		path string
	}{
		{
			name: "Translate page",
			path: "/",
		},
		{
			name: "Viewer page",
			path: "/viewer",
		},
		{
			name: "History page",
			path: "/history",
		},
		{
			name: "About page",
			path: "/about",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			// Should return 200 OK or at least not 404
			if rec.Code == http.StatusNotFound {
				t.Errorf("Route %s returned 404 Not Found - route may not be registered", tt.path)
			}
		})
	}
}

// TestBuildAPIURLOutsideBrowser tests the server-side fallback to relative URLs
func TestBuildAPIURLOutsideBrowser(t *testing.T) {
	if got := GetAPIBaseURL(); got != "" {
		t.Errorf("Expected empty base URL outside the browser, got %q", got)
	}
	if got := BuildAPIURL("/api/history"); got != "/api/history" {
		t.Errorf("Expected relative URL, got %q", got)
	}
}

// TestGetDefaultsOutsideBrowser tests the built-in frontend defaults
func TestGetDefaultsOutsideBrowser(t *testing.T) {
	defaults := GetDefaults()
	if defaults.TargetLang != "zh" {
		t.Errorf("Expected default target language zh, got %q", defaults.TargetLang)
	}
	if defaults.Zoom != 1.0 {
		t.Errorf("Expected default zoom 1.0, got %g", defaults.Zoom)
	}
	if defaults.BufferFactor != 1.0 {
		t.Errorf("Expected default buffer factor 1.0, got %g", defaults.BufferFactor)
	}
}
