// Package client talks to the external translation backend: it uploads a
// document with a target language, follows translation progress over a
// websocket, and downloads the translated result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger = slog.Default()

// Client is an HTTP client for the translation backend
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for the backend at baseURL
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// UploadResponse is the backend's answer to a translation request
type UploadResponse struct {
	TaskID string `json:"taskId"`
	Error  string `json:"error,omitempty"`
}

// Upload submits a PDF for translation and returns the backend task ID used
// to follow progress and fetch the result.
func (c *Client) Upload(ctx context.Context, pdfPath string, targetLang string) (string, error) {
	file, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	// Create multipart form data
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(pdfPath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}

	_, err = io.Copy(part, file)
	if err != nil {
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}

	if err := writer.WriteField("target_lang", targetLang); err != nil {
		return "", fmt.Errorf("failed to write form field: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	url := fmt.Sprintf("%s/api/translate", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call translation backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translation backend returned error status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var uploadResp UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	if uploadResp.Error != "" {
		return "", fmt.Errorf("translation backend error: %s", uploadResp.Error)
	}
	if uploadResp.TaskID == "" {
		return "", fmt.Errorf("translation backend returned no task ID")
	}

	return uploadResp.TaskID, nil
}

// Download fetches the translated PDF for a finished task and writes it to
// outputPath.
func (c *Client) Download(ctx context.Context, taskID string, outputPath string) error {
	url := fmt.Sprintf("%s/api/download/%s", c.BaseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call translation backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("translation backend returned error status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write translated PDF: %w", err)
	}

	return nil
}
