package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/app"
	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: common.ParseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.Server.GinMode)

	a := app.New(cfg, logger)
	st := a.Renderer.Status()
	logger.Info("voucherd.starting",
		"addr", cfg.Server.Addr,
		"model", a.Model.Model(),
		"api_key", a.Model.APIKeyConfigured(),
		"template_ready", st.TemplateReady,
		"logo_found", st.LogoFound,
		"ocr_engine", cfg.OCR.Engine,
		"converter", cfg.Render.Converter,
	)

	srv := server.New(server.Deps{
		Processor:      a.Processor,
		Assets:         a.Renderer,
		Credentials:    a.Model,
		Metrics:        a.Metrics,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: constants.MaxUploadBytes,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("voucherd.listen_failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("voucherd.shutting_down")
	ctx, cancel := common.WithTimeout(context.Background(), 2*cfg.Pipeline.StageTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("voucherd.shutdown_failed", "error", err)
	}
}
