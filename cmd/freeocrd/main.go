package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/extraction"
	"github.com/joseph-ayodele/free-ocr/internal/ocr"
	"github.com/joseph-ayodele/free-ocr/internal/rewrite"
	"github.com/joseph-ayodele/free-ocr/internal/server"
)

func main() {
	// Text output without time/level; the process supervisor adds both
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recognizer, err := ocr.FromConfig(cfg.OCR, logger)
	if err != nil {
		logger.Error("failed to build ocr backend", "backend", cfg.OCR.Backend, "error", err)
		os.Exit(1)
	}

	// The proxy route always serves the in-process rewriter; the session may
	// go through a remote proxy instead.
	proxy := rewrite.NewOpenAIService(cfg.LLM, logger)
	sessionRewriter := rewrite.FromConfig(cfg, logger)

	session := extraction.NewSession(recognizer, sessionRewriter, logger,
		extraction.WithConcurrency(cfg.Rewrite.Concurrency),
		extraction.WithMaxImageSide(cfg.OCR.MaxImageSide),
		extraction.WithListener(func(s extraction.Snapshot) {
			logger.Info("extraction.transition", "batch_id", s.Batch, "phase", s.Phase, "failed", len(s.Failed))
		}),
	)

	srv := server.New(proxy, recognizer, session, logger,
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithMaxImageSide(cfg.OCR.MaxImageSide),
	)
	httpServer := &http.Server{Addr: cfg.Server.HTTPAddr, Handler: srv}

	// gRPC health for orchestrators
	var grpcServer *grpc.Server
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		grpcServer = grpc.NewServer()
		healthServer := health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		reflection.Register(grpcServer)

		logger.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC serve error", "error", err)
				os.Exit(1)
			}
		}()
		defer healthServer.Shutdown()
	}

	logger.Info("free-ocr listening",
		"addr", cfg.Server.HTTPAddr,
		"ocr_backend", cfg.OCR.Backend,
		"model", cfg.LLM.Model,
		"remote_proxy", cfg.Rewrite.ProxyURL != "",
	)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}
