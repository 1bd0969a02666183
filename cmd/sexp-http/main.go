package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rphilander/sexp/config"
	"github.com/rphilander/sexp/gateway"
	"github.com/rphilander/sexp/server"
)

// sexp-http exposes a running sexpd over HTTP.
func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.WithError(err).Warn("using defaults for invalid settings")
	}
	log.SetLevel(cfg.LogLevel)

	client, err := server.Dial(cfg.SockPath)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           gateway.Handler(client),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.WithFields(log.Fields{"addr": cfg.HTTPAddr, "sock": cfg.SockPath}).Info("sexp-http started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server: %v", err)
	}
}
