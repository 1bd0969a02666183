package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/rphilander/sexp/config"
	wire "github.com/rphilander/sexp/server"
)

var client *wire.Client

// formatResult turns a sexpd reply into an MCP tool result.
func formatResult(resp map[string]any) (*mcp.CallToolResult, error) {
	ok, _ := resp["ok"].(bool)
	if !ok {
		errMsg, _ := resp["error"].(string)
		if errMsg == "" {
			errMsg = "unknown error"
		}
		if kind, _ := resp["kind"].(string); kind != "" {
			errMsg = kind + ": " + errMsg
		}
		return mcp.NewToolResultError(errMsg), nil
	}
	out, err := json.MarshalIndent(resp["value"], "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func forward(req map[string]any) (*mcp.CallToolResult, error) {
	resp, err := client.Call(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func handleEval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return forward(map[string]any{"op": "eval", "expr": expr})
}

func handleDefine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return forward(map[string]any{"op": "define", "name": name, "expr": expr})
}

func handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return forward(map[string]any{"op": "delete", "name": name})
}

func handleBindings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return forward(map[string]any{"op": "bindings"})
}

func handleTraces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return forward(map[string]any{"op": "traces"})
}

func handleClear(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return forward(map[string]any{"op": "clear"})
}

func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.WithError(err).Warn("using defaults for invalid settings")
	}
	log.SetLevel(cfg.LogLevel)
	// stdout carries the MCP protocol.
	log.SetOutput(os.Stderr)

	client, err = wire.Dial(cfg.SockPath)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()
	log.WithField("sock", cfg.SockPath).Info("connected to sexpd")

	s := server.NewMCPServer(
		"sexp",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("sexp_eval",
			mcp.WithDescription("Simplify one or more s-expressions and return the last result with its type."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("S-expression source, e.g. (car (quote (1 2 3)))"),
			),
		),
		handleEval,
	)

	s.AddTool(
		mcp.NewTool("sexp_define",
			mcp.WithDescription("Bind a global name to an expression. The expression is stored unevaluated."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Symbol name to bind"),
			),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("S-expression to bind"),
			),
		),
		handleDefine,
	)

	s.AddTool(
		mcp.NewTool("sexp_delete",
			mcp.WithDescription("Remove a global binding."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Symbol name to remove"),
			),
		),
		handleDelete,
	)

	s.AddTool(
		mcp.NewTool("sexp_bindings",
			mcp.WithDescription("List global bindings with their source."),
		),
		handleBindings,
	)

	s.AddTool(
		mcp.NewTool("sexp_traces",
			mcp.WithDescription("List recent evaluations with results or errors."),
		),
		handleTraces,
	)

	s.AddTool(
		mcp.NewTool("sexp_clear",
			mcp.WithDescription("Drop every binding and trace and empty the journal."),
		),
		handleClear,
	)

	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
