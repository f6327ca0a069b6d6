package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the server settings
type ServerConfig struct {
	ListenAddrIP     string
	ListenAddrPort   string
	BackendURL       string // translation backend, proxied under /api/translate and /ws
	DatabaseType     string
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseDbname   string
	DatabaseSslmode  string
	StagingPath      string // absolute path where viewer documents are staged
	MaxUploadMB      int
	SessionTTL       int    // minutes a viewer session may sit idle before cleanup
	CleanupInterval  int    // minutes between cleanup runs
	RendererBackend  string // "fitz" or "pdfium"
	FrontEndConfig
}

// FrontEndConfig stores all of the frontend settings
type FrontEndConfig struct {
	ServerAPIURL      string
	DefaultTargetLang string
	DefaultZoom       float64
	BufferFactor      float64
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive := ServerConfig{}

	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	// Server configuration
	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")

	// Translation backend
	serverConfigLive.BackendURL = getEnv("BACKEND_URL", "http://localhost:8002")

	// Database configuration (translation history)
	serverConfigLive.DatabaseType = getEnv("DATABASE_TYPE", "sqlite")
	serverConfigLive.DatabaseHost = getEnv("DATABASE_HOST", "localhost")
	serverConfigLive.DatabasePort = getEnv("DATABASE_PORT", "5432")
	serverConfigLive.DatabaseUser = getEnv("DATABASE_USER", "aipdf")
	serverConfigLive.DatabasePassword = getEnv("DATABASE_PASSWORD", "")
	serverConfigLive.DatabaseDbname = getEnv("DATABASE_NAME", "aipdf")
	serverConfigLive.DatabaseSslmode = getEnv("DATABASE_SSLMODE", "disable")

	logger.Info("Database configuration loaded", "type", serverConfigLive.DatabaseType)

	// Staging area for documents opened in the viewer
	stagingDir := filepath.ToSlash(getEnv("STAGING_PATH", "staging"))
	stagingDirAbs, err := filepath.Abs(stagingDir)
	if err != nil {
		logger.Error("Failed creating absolute path for staging directory", "error", err)
	}
	serverConfigLive.StagingPath = stagingDirAbs

	serverConfigLive.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", 64)
	serverConfigLive.SessionTTL = getEnvInt("SESSION_TTL_MINUTES", 30)
	serverConfigLive.CleanupInterval = getEnvInt("CLEANUP_INTERVAL_MINUTES", 10)
	serverConfigLive.RendererBackend = getEnv("RENDERER_BACKEND", "fitz")

	fmt.Println("\n========================================")
	fmt.Println("   aiPDF - PDF Translation Viewer")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	fmt.Printf("Translation backend: %s\n", serverConfigLive.BackendURL)
	fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "aipdf.log"))
	fmt.Println("Initializing...")

	// Frontend configuration
	serverConfigLive.FrontEndConfig = loadFrontEndConfig()

	return serverConfigLive, logger
}

func loadFrontEndConfig() FrontEndConfig {
	return FrontEndConfig{
		ServerAPIURL:      getEnv("SERVER_API_URL", ""),
		DefaultTargetLang: getEnv("DEFAULT_TARGET_LANG", "zh"),
		DefaultZoom:       getEnvFloat("DEFAULT_ZOOM", 1.0),
		BufferFactor:      getEnvFloat("BUFFER_FACTOR", 1.0),
	}
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "debug")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	logOutput := getEnv("LOG_OUTPUT", "stdout")
	var logWriter io.Writer

	if logOutput == "stdout" {
		logWriter = os.Stdout
	} else {
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "aipdf.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}
