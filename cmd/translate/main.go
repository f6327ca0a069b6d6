package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/zrs99/aipdf/client"
	config "github.com/zrs99/aipdf/config"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

func main() {
	// Parse command-line flags
	backend := flag.String("backend", "", "Translation backend URL (overrides config)")
	lang := flag.String("lang", "", "Target language code (overrides config)")
	out := flag.String("out", "", "Output path for the translated PDF")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: translate [flags] <document.pdf>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)

	serverConfig, logger := config.SetupServer()
	Logger = logger
	config.Logger = logger
	client.Logger = logger

	backendURL := serverConfig.BackendURL
	if *backend != "" {
		backendURL = *backend
	}
	targetLang := serverConfig.FrontEndConfig.DefaultTargetLang
	if *lang != "" {
		validated, err := client.ValidateTargetLang(*lang)
		if err != nil {
			Logger.Error("Invalid target language", "lang", *lang, "error", err)
			os.Exit(1)
		}
		targetLang = validated
	}

	outputPath := *out
	if outputPath == "" {
		base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
		outputPath = fmt.Sprintf("%s.%s.pdf", base, targetLang)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendClient := client.New(backendURL)

	Logger.Info("Uploading document", "path", pdfPath, "targetLang", targetLang, "backend", backendURL)
	taskID, err := backendClient.Upload(ctx, pdfPath, targetLang)
	if err != nil {
		Logger.Error("Upload failed", "error", err)
		os.Exit(1)
	}
	Logger.Info("Translation accepted", "taskID", taskID)

	sub, err := backendClient.Subscribe(ctx, taskID)
	if err != nil {
		Logger.Error("Failed to subscribe to progress", "error", err)
		os.Exit(1)
	}
	defer sub.Close()

	last := 0
	for event := range sub.Events() {
		if event.Progress > last {
			last = event.Progress
			fmt.Printf("\rTranslating... %3d%%", last)
		}
	}
	fmt.Println()

	if err := sub.Err(); err != nil {
		Logger.Error("Progress channel failed", "error", err)
		os.Exit(1)
	}
	if last < 100 {
		Logger.Error("Progress channel closed before completion", "lastProgress", last)
		os.Exit(1)
	}

	Logger.Info("Downloading translated document", "taskID", taskID, "output", outputPath)
	if err := backendClient.Download(ctx, taskID, outputPath); err != nil {
		Logger.Error("Download failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Translated document written to %s\n", outputPath)
}
