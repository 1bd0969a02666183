package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/rphilander/sexp/config"
	sexp "github.com/rphilander/sexp/core"
	"github.com/rphilander/sexp/server"
	"github.com/rphilander/sexp/store"
)

func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.WithError(err).Warn("using defaults for invalid settings")
	}
	log.SetLevel(cfg.LogLevel)

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "sexp.db"
	}
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	st, err := store.Open(dbPath, sessionID)
	if err != nil {
		log.Fatalf("failed to open journal: %v", err)
	}
	defer st.Close()

	opts := append(cfg.SessionOptions(), sexp.WithID(sessionID), sexp.WithJournal(st))
	sess := sexp.NewSession(opts...)
	defs, err := st.Load()
	if err != nil {
		log.Fatalf("failed to load journal: %v", err)
	}
	sess.Replay(defs)

	srv, err := server.New(sess, cfg.SockPath)
	if err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("shutting down...")
		srv.Shutdown()
	}()

	log.WithFields(log.Fields{"sock": cfg.SockPath, "db": dbPath, "session": sessionID}).Info("sexpd started")
	srv.Run()
}
