package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angeloszaimis/api-proxy/config"
	"github.com/angeloszaimis/api-proxy/internal/forwarder"
	"github.com/angeloszaimis/api-proxy/internal/handler"
	"github.com/angeloszaimis/api-proxy/internal/httpserver"
	"github.com/angeloszaimis/api-proxy/internal/metrics"
	"github.com/angeloszaimis/api-proxy/internal/routes"
	"github.com/angeloszaimis/api-proxy/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	table := routes.Default()

	transport := forwarder.NewTransport(forwarder.TransportOptions{
		MaxIdleConnsPerHost: cfg.Proxy.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Proxy.IdleConnTimeoutDuration(),
	})
	fwd := forwarder.New(transport, cfg.Proxy.BackendTimeoutDuration(), log)

	collectorCtx, stopCollector := context.WithCancel(context.Background())
	defer stopCollector()

	var (
		collector *metrics.Collector
		adminSrv  *httpserver.Server
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		collector = metrics.NewCollector(cfg.Metrics.BufferSize, log, reg)
		collector.Start(collectorCtx)

		adminSrv, err = httpserver.New(cfg.Metrics.Address, collector.AdminRouter(), httpserver.Timeouts{})
		if err != nil {
			log.Error("Failed to create metrics server", slog.Any("err", err))
			os.Exit(1)
		}
	}

	proxy := handler.NewProxyHandler(log, table, fwd, collector)

	read, write, idle := cfg.Server.Timeouts()
	srv, err := httpserver.New(cfg.Server.Address, setupRouter(proxy, log), httpserver.Timeouts{
		Read:  read,
		Write: write,
		Idle:  idle,
	})
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 2)

	go func() {
		srvErrCh <- srv.Start()
	}()

	if adminSrv != nil {
		go func() {
			srvErrCh <- adminSrv.Start()
		}()
		log.Info("Metrics listening", slog.String("addr", cfg.Metrics.Address))
	}

	log.Info("Reverse proxy listening on "+cfg.Server.Address,
		slog.String("addr", cfg.Server.Address),
		slog.Any("services", table.Services()),
		slog.Duration("backend_timeout", cfg.Proxy.BackendTimeoutDuration()))

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Server stopped unexpectedly", slog.Any("err", err))
			exitCode = 1
		}
		cancel()
	}

	servers := []*httpserver.Server{srv}
	if adminSrv != nil {
		servers = append(servers, adminSrv)
	}
	shutdown(log, servers, collector, stopCollector)
	transport.CloseIdleConnections()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// shutdown stops the servers first and the collector last, so events from
// requests that finish while the servers drain are still counted.
func shutdown(log *slog.Logger, servers []*httpserver.Server, collector *metrics.Collector, stopCollector context.CancelFunc) {
	for _, s := range servers {
		if err := s.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.String("addr", s.Addr()), slog.Any("err", err))
		}
	}

	stopCollector()
	if collector != nil {
		<-collector.Done()
	}
}
