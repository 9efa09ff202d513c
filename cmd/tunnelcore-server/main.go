// Command tunnelcore-server runs the tunnel proxy core as a standalone
// HTTP/WebSocket server. The config document is config.toml in this
// directory, embedded at build time via //go:embed; the CONFIG_PATH
// environment variable is not read, and there is no runtime config file
// flag.
//
// Grounded on the flag-parse + signal-driven graceful shutdown shape of
// teacher's cmd/outline-cli-ws/main.go, adapted from a SOCKS5 net.Listener
// accept loop to an http.Server since this core's inbound surface is
// HTTP/WebSocket rather than raw SOCKS5.
package main

import (
	"context"
	_ "embed"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bepass-tunl/tunnelcore/pkg/tunnelcore"
)

//go:embed config.toml
var embeddedConfig []byte

func main() {
	var addr string
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := tunnelcore.LoadConfigBytes(embeddedConfig)
	if err != nil {
		// spec §3: invalid config falls back to the zero-value Config and
		// the process keeps running with no inbounds matched.
		logger.Warn("config: falling back to empty config", zap.Error(err))
		cfg = tunnelcore.Config{}
	}

	dispatcher := tunnelcore.NewDispatcher(&cfg)
	tunnel := tunnelcore.NewTunnel(dispatcher, logger)
	router := tunnelcore.NewRouter(&cfg, tunnel, logger)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()

	logger.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
