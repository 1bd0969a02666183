// Package gateway serves the daemon's operations over HTTP. Each request is
// turned into one socket message and the daemon's reply is returned as JSON.
package gateway

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rphilander/sexp/server"
)

// Caller sends one message to the daemon and returns its reply.
// *server.Client satisfies it.
type Caller interface {
	Call(msg map[string]any) (map[string]any, error)
}

type gateway struct {
	daemon Caller
	log    *logrus.Entry
}

// Handler routes:
//
//	GET  /          manual
//	POST /eval      {"expr": "..."}
//	POST /define    {"name": "...", "expr": "..."}
//	POST /delete    {"name": "..."}
//	GET  /bindings
//	GET  /traces
//	POST /clear
func Handler(daemon Caller) http.Handler {
	g := &gateway{daemon: daemon, log: logrus.WithField("component", "gateway")}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", g.op(""))
	mux.HandleFunc("POST /eval", g.op("eval"))
	mux.HandleFunc("POST /define", g.op("define"))
	mux.HandleFunc("POST /delete", g.op("delete"))
	mux.HandleFunc("GET /bindings", g.op("bindings"))
	mux.HandleFunc("GET /traces", g.op("traces"))
	mux.HandleFunc("POST /clear", g.op("clear"))
	return mux
}

func (g *gateway) op(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg := map[string]any{}
		if r.Method == http.MethodPost {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, server.MaxFrameSize))
			if err != nil {
				http.Error(w, "failed to read body", http.StatusBadRequest)
				return
			}
			if len(body) > 0 {
				if err := json.Unmarshal(body, &msg); err != nil || msg == nil {
					http.Error(w, "body must be a JSON object", http.StatusBadRequest)
					return
				}
			}
		}
		msg["op"] = name
		delete(msg, "id")

		resp, err := g.daemon.Call(msg)
		if err != nil {
			g.log.WithError(err).WithField("op", name).Error("daemon call failed")
			http.Error(w, "failed to reach sexpd", http.StatusBadGateway)
			return
		}
		writeJSON(w, statusFor(resp), resp)
	}
}

// statusFor maps a daemon reply to an HTTP status: evaluation failures are
// 422, malformed requests 400.
func statusFor(resp map[string]any) int {
	if ok, _ := resp["ok"].(bool); ok {
		return http.StatusOK
	}
	if _, isEval := resp["kind"]; isEval {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
