// Package server exposes a session over a unix socket. One actor goroutine
// owns the session; connections only exchange messages with it.
package server

import (
	"fmt"
	"io"
	"net"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	sexp "github.com/rphilander/sexp/core"
)

type Server struct {
	session  *sexp.Session
	requests chan request
	done     chan struct{}
	listener net.Listener
	log      *logrus.Entry
}

type request struct {
	msg      map[string]any
	response chan map[string]any
}

func newServer(session *sexp.Session) *Server {
	return &Server{
		session:  session,
		requests: make(chan request, 64),
		done:     make(chan struct{}),
		log:      logrus.WithField("component", "server"),
	}
}

// New listens on sockPath, replacing a stale socket file.
func New(session *sexp.Session, sockPath string) (*Server, error) {
	os.Remove(sockPath)
	s := newServer(session)
	l, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", sockPath, err)
	}
	s.listener = l
	s.log = s.log.WithField("sock", sockPath)
	return s, nil
}

// Run starts the actor and accepts connections until Shutdown.
func (s *Server) Run() {
	go s.actorLoop()
	s.log.Info("listening")
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.log.WithError(err).Error("accept")
			}
			return
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) Shutdown() {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
}

// actorLoop is the only goroutine that touches the session.
func (s *Server) actorLoop() {
	for {
		select {
		case req := <-s.requests:
			req.response <- s.handleRequest(req.msg)
		case <-s.done:
			return
		}
	}
}

func (s *Server) sendToActor(msg map[string]any) (map[string]any, bool) {
	resp := make(chan map[string]any, 1)
	select {
	case s.requests <- request{msg: msg, response: resp}:
	case <-s.done:
		return nil, false
	}
	select {
	case r := <-resp:
		return r, true
	case <-s.done:
		return nil, false
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	for {
		msg, err := ReadFrame(conn)
		if err != nil {
			if err != io.EOF {
				s.log.WithError(err).Warn("read client message")
			}
			return
		}
		resp, ok := s.sendToActor(msg)
		if !ok {
			return
		}
		if err := WriteFrame(conn, resp); err != nil {
			s.log.WithError(err).Warn("write client response")
			return
		}
	}
}

func (s *Server) handleRequest(msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)
	op, _ := msg["op"].(string)
	s.log.WithFields(logrus.Fields{"id": id, "op": op}).Debug("request")

	switch op {
	case "":
		return s.manual(id)
	case "eval":
		return s.handleEval(id, msg)
	case "define":
		return s.handleDefine(id, msg)
	case "delete":
		return s.handleDelete(id, msg)
	case "bindings":
		return s.handleBindings(id)
	case "traces":
		return s.handleTraces(id)
	case "clear":
		return s.handleClear(id)
	default:
		return errorResponse(id, fmt.Sprintf("unknown op: %s", op), nil)
	}
}

func (s *Server) manual(id string) map[string]any {
	return map[string]any{
		"id": id,
		"ok": true,
		"value": map[string]any{
			"name":    "sexpd",
			"session": s.session.ID,
			"ops": map[string]any{
				"eval":     "Simplify every expression in expr and return the last result. Params: expr (string)",
				"define":   "Bind name to expr without evaluating it. Params: name (string), expr (string)",
				"delete":   "Remove a global binding. Params: name (string)",
				"bindings": "List global bindings as name/source pairs.",
				"traces":   "List recent evaluations.",
				"clear":    "Drop all bindings, traces and the journal.",
			},
			"forms":    []any{"quote", "define", "car", "cdr", "lambda", "if", "and", "or", "not"},
			"builtins": builtinNames(s.session),
		},
	}
}

func builtinNames(sess *sexp.Session) []any {
	names := make([]any, 0, len(sess.Evaluator().Builtins))
	for _, n := range sortedKeys(sess.Evaluator().Builtins) {
		names = append(names, n)
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Server) handleEval(id string, msg map[string]any) map[string]any {
	expr, ok := msg["expr"].(string)
	if !ok {
		return errorResponse(id, "eval: missing 'expr' string", nil)
	}
	v, err := s.session.Eval(expr)
	if err != nil {
		return errorResponse(id, err.Error(), err)
	}
	return map[string]any{
		"id": id,
		"ok": true,
		"value": map[string]any{
			"result": v.String(),
			"type":   v.KindName(),
		},
	}
}

func (s *Server) handleDefine(id string, msg map[string]any) map[string]any {
	name, ok := msg["name"].(string)
	if !ok || name == "" {
		return errorResponse(id, "define: missing 'name' string", nil)
	}
	expr, ok := msg["expr"].(string)
	if !ok {
		return errorResponse(id, "define: missing 'expr' string", nil)
	}
	if err := s.session.Define(name, expr); err != nil {
		return errorResponse(id, err.Error(), err)
	}
	return map[string]any{"id": id, "ok": true, "value": name}
}

func (s *Server) handleDelete(id string, msg map[string]any) map[string]any {
	name, ok := msg["name"].(string)
	if !ok {
		return errorResponse(id, "delete: missing 'name' string", nil)
	}
	if !s.session.Delete(name) {
		return errorResponse(id, fmt.Sprintf("delete: %s is not defined", name), nil)
	}
	return map[string]any{"id": id, "ok": true, "value": name}
}

func (s *Server) handleBindings(id string) map[string]any {
	defs := s.session.Bindings()
	out := make([]any, len(defs))
	for i, d := range defs {
		out[i] = map[string]any{"name": d.Name, "source": d.Source}
	}
	return map[string]any{"id": id, "ok": true, "value": out}
}

func (s *Server) handleTraces(id string) map[string]any {
	traces := s.session.Traces()
	out := make([]any, len(traces))
	for i := range traces {
		out[i] = traces[i].ToMap()
	}
	return map[string]any{"id": id, "ok": true, "value": out}
}

func (s *Server) handleClear(id string) map[string]any {
	if err := s.session.Clear(); err != nil {
		return errorResponse(id, err.Error(), nil)
	}
	return map[string]any{"id": id, "ok": true, "value": "cleared"}
}

// errorResponse builds a failure reply; evaluation errors also carry their
// kind.
func errorResponse(id, errMsg string, err error) map[string]any {
	resp := map[string]any{"id": id, "ok": false, "error": errMsg}
	if k := sexp.KindOf(err); k != 0 {
		resp["kind"] = k.String()
	}
	return resp
}
