// cmd/mcp-server/main.go: standalone HTTP tool server for exprtree
//
// Exposes exprtree tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server -port 8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	maxBody := flag.Int64("max-body", server.DefaultMaxBody, "Max request body size in bytes")
	debug := flag.Bool("debug", false, "Log every tool call")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Addr:    fmt.Sprintf(":%d", *port),
		MaxBody: *maxBody,
		Logger:  logger,
	})
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
