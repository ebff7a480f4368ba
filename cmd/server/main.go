package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/studybuddy/internal/pdf"
	"github.com/sakif/studybuddy/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := envOr("DB_PATH", "data/studybuddy.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	historyDir := envOr("HISTORY_DIR", "sessions")
	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		logger.Error("failed to create history directory",
			slog.String("dir", historyDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	raster, err := pdf.NewPopplerRasterizer()
	if err != nil {
		logger.Warn("pdftoppm unavailable — PDF uploads will be rejected",
			slog.String("error", err.Error()),
		)
		raster = nil
	}

	cfg := server.Config{
		Port:        port,
		DBPath:      dbPath,
		HistoryDir:  historyDir,
		FrontendURL: envOr("FRONTEND_URL", "http://localhost:5173"),

		JWTSecret:          jwtSecret,
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  envOr("GOOGLE_REDIRECT_URL", "http://localhost:8080/callback"),

		VisionAPIKey: os.Getenv("GOOGLE_API_KEY"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}

	srv, err := server.New(cfg, logger, rasterizer(raster))
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// rasterizer avoids handing server.New a non-nil interface wrapping a nil
// pointer when pdftoppm is missing.
func rasterizer(r *pdf.PopplerRasterizer) pdf.Rasterizer {
	if r == nil {
		return nil
	}
	return r
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
