// ABOUTME: Standalone server for the in-memory fake backend
// ABOUTME: Serves seeded fixtures for local development against the CLI and TUI

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/rankup/twin"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8787", "Listen address")
	latency := flag.Duration("latency", 0, "Delay added to every dashboard fetch")
	autoVerify := flag.Bool("auto-verify", false, "Return a token on registration")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "twin"})

	srv := twin.New()
	srv.SetAutoVerify(*autoVerify)
	if *latency > 0 {
		srv.Delay(http.MethodGet, "/investors/dashboard/stats", *latency)
	}

	httpSrv := &http.Server{
		Addr:         *addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting fake backend", "addr", *addr)
		fmt.Printf("Demo login: %s / %s\n", twin.DemoEmail, twin.DemoPassword)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
