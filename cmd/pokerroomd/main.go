// Command pokerroomd serves multi-room Texas Hold'em over WebSocket
// (SPEC_FULL.md §14): it wires configuration, logging, the room
// manager, the connection handler, and the HTTP/WebSocket transport
// together and blocks until SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/decred/slog"

	"github.com/vctt94/pokerroomd/internal/connhandler"
	"github.com/vctt94/pokerroomd/internal/roommgr"
	"github.com/vctt94/pokerroomd/internal/transport"
)

func main() {
	port := envOr("PORT", "8080")
	staticDir := os.Getenv("STATIC_DIR")
	logLevel := envOr("PKR_LOG_LEVEL", "info")
	gracePeriod := envSecondsOr("PKR_GRACE_PERIOD_SECS", 300)
	turnTimeout := envSecondsOr("PKR_TURN_TIMEOUT_SECS", 30)

	backend := slog.NewBackend(os.Stderr)
	log := backend.Logger("PKRD")
	level, ok := slog.LevelFromString(logLevel)
	if !ok {
		level = slog.LevelInfo
	}
	log.SetLevel(level)

	mgr := roommgr.New(log, gracePeriod)
	handler := connhandler.New(mgr, log, turnTimeout)
	srv := transport.NewServer(":"+port, staticDir, handler.Handle, log)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envSecondsOr(key string, def int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(def) * time.Second
}
