package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/zrs99/aipdf/viewer"
)

// GetAPIBaseURL returns the configured API base URL
// It reads from window.aipdfConfig.apiURL if available,
// otherwise falls back to empty string (relative URLs)
func GetAPIBaseURL() string {
	// Check if config is available in browser
	if !app.IsClient {
		return "" // Server-side rendering - use relative URLs
	}

	// Try to get API URL from global config
	config := app.Window().Get("aipdfConfig")
	if config.Truthy() {
		apiURL := config.Get("apiURL")
		if apiURL.Truthy() {
			url := apiURL.String()
			// Ensure no trailing slash
			if len(url) > 0 && url[len(url)-1] == '/' {
				return url[:len(url)-1]
			}
			return url
		}
	}

	// Fallback to relative URLs (same origin)
	return ""
}

// BuildAPIURL constructs a full API URL from a path
// Example: BuildAPIURL("/api/history") -> "http://backend:8000/api/history"
// or just "/api/history" if using relative URLs
func BuildAPIURL(path string) string {
	baseURL := GetAPIBaseURL()
	if baseURL == "" {
		return path // Relative URL
	}
	return baseURL + path
}

// Defaults holds the frontend settings injected via config.js
type Defaults struct {
	TargetLang   string
	Zoom         float64
	BufferFactor float64
}

// GetDefaults reads window.aipdfConfig, falling back to built-in values when
// the config script did not load.
func GetDefaults() Defaults {
	defaults := Defaults{TargetLang: "zh", Zoom: 1.0, BufferFactor: 1.0}
	if !app.IsClient {
		return defaults
	}

	config := app.Window().Get("aipdfConfig")
	if !config.Truthy() {
		return defaults
	}
	if v := config.Get("defaultTargetLang"); v.Truthy() {
		defaults.TargetLang = v.String()
	}
	if v := config.Get("defaultZoom"); v.Truthy() {
		defaults.Zoom = v.Float()
	}
	if v := config.Get("bufferFactor"); v.Truthy() {
		defaults.BufferFactor = v.Float()
	}
	return defaults
}

// Language is one selectable translation target from the API
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Translation is one history entry from the API
type Translation struct {
	ULID        string `json:"id"`
	TaskID      string `json:"taskId"`
	FileName    string `json:"fileName"`
	TargetLang  string `json:"targetLang"`
	PageCount   int    `json:"pageCount"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"createdAt"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// OpenedDocument is the response of opening a document for viewing
type OpenedDocument struct {
	ID        string            `json:"id"`
	PageCount int               `json:"pageCount"`
	Sizes     []viewer.PageSize `json:"sizes"`
}
