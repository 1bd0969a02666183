package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rphilander/sexp/config"
	"github.com/rphilander/sexp/server"
)

// sexp-cli reads one JSON request from stdin, sends it to sexpd and prints
// the reply.
func main() {
	cfg, _ := config.Load(os.Getenv)

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
		os.Exit(1)
	}

	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		fmt.Fprintf(os.Stderr, "parse JSON: %v\n", err)
		os.Exit(1)
	}
	if msg == nil {
		msg = map[string]any{}
	}

	client, err := server.Dial(cfg.SockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	resp, err := client.Call(msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "format response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
