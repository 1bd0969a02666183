package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/peterh/liner"
	log "github.com/sirupsen/logrus"
	"github.com/xyproto/vt"

	"github.com/rphilander/sexp/config"
	sexp "github.com/rphilander/sexp/core"
	"github.com/rphilander/sexp/store"
)

const help = `:load FILE   evaluate every expression in FILE
:bindings    list global bindings
:traces      list recent evaluations
:sessions    list journaled sessions (needs SEXP_DB)
:clear       drop all bindings and traces
:quit        leave`

type repl struct {
	sess  *sexp.Session
	store *store.Store
	out   io.Writer
}

func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.WithError(err).Warn("using defaults for invalid settings")
	}
	log.SetLevel(cfg.LogLevel)

	r := &repl{out: os.Stdout}
	opts := cfg.SessionOptions()
	if cfg.DBPath != "" {
		id := cfg.SessionID
		if id == "" {
			id = uuid.NewString()
		}
		st, err := store.Open(cfg.DBPath, id)
		if err != nil {
			log.Fatalf("failed to open journal: %v", err)
		}
		defer st.Close()
		r.store = st
		opts = append(opts, sexp.WithID(id), sexp.WithJournal(st))
	}
	r.sess = sexp.NewSession(opts...)
	if r.store != nil {
		defs, err := r.store.Load()
		if err != nil {
			log.Fatalf("failed to load journal: %v", err)
		}
		r.sess.Replay(defs)
	}

	if len(os.Args) > 1 {
		ok := true
		for _, path := range os.Args[1:] {
			ok = r.load(path) && ok
		}
		if !ok {
			os.Exit(1)
		}
		return
	}
	r.interactive()
}

func (r *repl) interactive() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), ".sexp_history")
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(r.out, vt.LightGray.Get("session "+r.sess.ID+"  (:help for commands)"))
	var pending strings.Builder
	for {
		prompt := "> "
		if pending.Len() > 0 {
			prompt = ". "
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				pending.Reset()
				continue
			}
			return // io.EOF
		}
		if pending.Len() == 0 && strings.HasPrefix(strings.TrimSpace(input), ":") {
			line.AppendHistory(input)
			if !r.command(strings.TrimSpace(input)) {
				return
			}
			continue
		}
		pending.WriteString(input)
		pending.WriteString("\n")
		src := pending.String()
		if !balanced(src) {
			continue
		}
		pending.Reset()
		if strings.TrimSpace(src) == "" {
			continue
		}
		line.AppendHistory(strings.TrimSpace(src))
		r.eval(src)
	}
}

// command runs a :command and reports whether the REPL should continue.
func (r *repl) command(input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":quit", ":q":
		return false
	case ":help":
		fmt.Fprintln(r.out, help)
	case ":load":
		if len(fields) != 2 {
			r.printError(errors.New(":load expects one file"))
			break
		}
		r.load(fields[1])
	case ":bindings":
		for _, d := range r.sess.Bindings() {
			fmt.Fprintf(r.out, "%s = %s\n", vt.Yellow.Get(d.Name), d.Source)
		}
	case ":traces":
		for _, t := range r.sess.Traces() {
			if t.Error != "" {
				fmt.Fprintf(r.out, "%s  %s  %s\n", t.Timestamp, t.Input, vt.Red.Get(t.Kind+": "+t.Error))
			} else {
				fmt.Fprintf(r.out, "%s  %s  => %s\n", t.Timestamp, t.Input, t.Result)
			}
		}
	case ":sessions":
		if r.store == nil {
			r.printError(errors.New("no journal: set SEXP_DB"))
			break
		}
		infos, err := r.store.Sessions()
		if err != nil {
			r.printError(err)
			break
		}
		for _, s := range infos {
			fmt.Fprintf(r.out, "%s  %d definitions  last write %s\n", s.ID, s.Definitions, s.LastWrite)
		}
	case ":clear":
		if err := r.sess.Clear(); err != nil {
			r.printError(err)
		}
	default:
		r.printError(fmt.Errorf("unknown command %s", fields[0]))
	}
	return true
}

func (r *repl) load(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		r.printError(err)
		return false
	}
	return r.eval(string(data))
}

func (r *repl) eval(src string) bool {
	v, err := r.sess.Eval(src)
	if err != nil {
		r.printError(err)
		return false
	}
	fmt.Fprintln(r.out, vt.Green.Get(v.String()))
	return true
}

func (r *repl) printError(err error) {
	msg := err.Error()
	if k := sexp.KindOf(err); k != 0 {
		msg = k.String() + ": " + msg
	}
	fmt.Fprintln(r.out, vt.Red.Get("error: "+msg))
}

// balanced reports whether every '(' in src outside strings and comments
// has been closed.
func balanced(src string) bool {
	depth := 0
	inString, escaped, inComment := false, false, false
	for _, ch := range src {
		switch {
		case inComment:
			if ch == '\n' {
				inComment = false
			}
		case inString:
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
		case ch == ';':
			inComment = true
		case ch == '"':
			inString = true
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		}
	}
	return depth <= 0 && !inString
}
