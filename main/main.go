package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bedrockproxy"
	"bedrockproxy/bedrock"
	"bedrockproxy/generate"
	"bedrockproxy/router"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

func main() {
	log := bedrockproxy.Logger

	if os.Getenv(bedrockproxy.LambdaFunctionEnvKey) == "" {
		if err := godotenv.Load(); err != nil {
			log.Debug("No .env file loaded", "error", err)
		}
		bedrockproxy.SetLevel(bedrockproxy.ParseLevel(os.Getenv("LOG_LEVEL")))
	}

	cfg, err := bedrockproxy.LoadConfig()
	if err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Built once per instance and reused by every warm invocation.
	runtime, err := bedrock.NewRuntimeClient(context.Background(), cfg.Region)
	if err != nil {
		log.Error("Error creating Bedrock client", "error", err)
		os.Exit(1)
	}
	client := bedrock.New(runtime, cfg.ModelID)

	// Nobody scrapes a Lambda instance, so metrics only exist in local mode.
	var registry *prometheus.Registry
	var metrics *generate.Metrics
	if !cfg.InLambda {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = generate.NewMetrics(registry)
	}
	handler := generate.NewHandler(client, metrics)

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(handler, cfg.StagePrefix)
	log.Info("Bedrock proxy configured",
		"region", cfg.Region,
		"model", client.ModelID(),
		"stage_prefix", cfg.StagePrefix,
		"lambda", cfg.InLambda)

	if cfg.InLambda {
		proxy, err := router.LambdaHandler(engine, cfg.PayloadVersion)
		if err != nil {
			log.Error("Error creating Lambda handler", "error", err)
			os.Exit(1)
		}
		lambda.Start(proxy)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, cfg, engine, registry); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// serve runs the API, and /metrics when configured, until ctx is cancelled.
func serve(ctx context.Context, cfg bedrockproxy.Config, engine http.Handler, registry *prometheus.Registry) error {
	log := bedrockproxy.Logger

	servers := []*http.Server{{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	errc := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Info("Listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}(srv)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down server")
	case serveErr = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", "addr", srv.Addr, "error", err)
		}
	}
	if serveErr == nil {
		log.Info("Server stopped gracefully")
	}
	return serveErr
}
