// Package server wires the repositories, services and handlers together and
// owns the HTTP listener lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/studybuddy/internal/auth"
	"github.com/sakif/studybuddy/internal/genai"
	"github.com/sakif/studybuddy/internal/handler"
	"github.com/sakif/studybuddy/internal/middleware"
	"github.com/sakif/studybuddy/internal/pdf"
	"github.com/sakif/studybuddy/internal/repository/fsstore"
	sqliteRepo "github.com/sakif/studybuddy/internal/repository/sqlite"
	"github.com/sakif/studybuddy/internal/service"
	"github.com/sakif/studybuddy/internal/vision"
)

// outboundTimeout bounds every call to Google APIs. OCR on a large page can
// take a while; 30s is generous without letting requests hang forever.
const outboundTimeout = 30 * time.Second

type Config struct {
	Port        int
	DBPath      string
	HistoryDir  string
	FrontendURL string

	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	VisionAPIKey string
	GeminiAPIKey string
}

type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and wires every route. raster may be nil when
// pdftoppm is not installed; PDF uploads are then rejected at request time.
func New(cfg Config, logger *slog.Logger, raster pdf.Rasterizer) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(raster); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes(raster pdf.Rasterizer) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	provider := auth.NewGoogleProvider(
		s.config.GoogleClientID, s.config.GoogleClientSecret, s.config.GoogleRedirectURL)

	// One client for all outbound Google calls.
	httpClient := &http.Client{Timeout: outboundTimeout}

	history := fsstore.New(s.config.HistoryDir)

	extractSvc := service.NewExtractService(vision.New(httpClient, s.config.VisionAPIKey), raster, s.logger)
	summarizeSvc := service.NewSummarizeService(genai.New(httpClient, s.config.GeminiAPIKey), s.logger)
	exportSvc := service.NewExportService(provider.Config(), s.db, service.NewGoogleDocsFactory(), s.logger)
	historySvc := service.NewHistoryService(history, s.logger)

	authHandler := handler.NewAuthHandler(provider, tokens, s.db, s.config.FrontendURL, s.logger)
	extractHandler := handler.NewExtractHandler(extractSvc, s.logger)
	summarizeHandler := handler.NewSummarizeHandler(summarizeSvc, s.logger)
	exportHandler := handler.NewExportHandler(exportSvc, s.logger)
	historyHandler := handler.NewHistoryHandler(historySvc, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.config.FrontendURL))
	s.router.Use(auth.Sessions(tokens, s.db))

	s.router.Get("/", handler.HandleIndex)
	s.router.Get("/authorize", authHandler.HandleAuthorize)
	s.router.Get("/callback", authHandler.HandleCallback)
	s.router.Get("/me", authHandler.HandleMe)
	s.router.Post("/logout", authHandler.HandleLogout)
	s.router.Post("/summarize", summarizeHandler.HandleSummarize)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Post("/extract", extractHandler.HandleExtract)
		r.Post("/download", historyHandler.HandleDownload)
		r.Post("/export/docs", exportHandler.HandleExportDocs)
		r.Get("/history", historyHandler.HandleList)
		r.Get("/history/{id}", historyHandler.HandleGet)
		r.Post("/history/save", historyHandler.HandleSave)
		r.Delete("/history/delete/{id}", historyHandler.HandleDelete)
	})

	return nil
}

// Router exposes the configured mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the listener until SIGINT/SIGTERM, then drains in-flight
// requests before returning.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  60 * time.Second, // uploads can be slow
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("history_dir", s.config.HistoryDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
