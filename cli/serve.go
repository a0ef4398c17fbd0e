package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions/internal/telemetry"
	"github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions/server"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP tool server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().IntP("port", "p", 8080, "Listen port")
	cmd.Flags().String("host", "0.0.0.0", "Listen host")
	cmd.Flags().Int64("max-body", server.DefaultMaxBody, "Max request body size in bytes")
	cmd.Flags().Duration("read-timeout", 15*time.Second, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", 15*time.Second, "HTTP write timeout")
	cmd.Flags().String("otlp-endpoint", "", "OTLP/HTTP collector host:port for traces (disabled when empty)")
	cmd.Flags().Bool("otlp-insecure", false, "Send traces to the collector over plain HTTP")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	maxBody, _ := cmd.Flags().GetInt64("max-body")
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	writeTimeout, _ := cmd.Flags().GetDuration("write-timeout")
	endpoint, _ := cmd.Flags().GetString("otlp-endpoint")
	insecure, _ := cmd.Flags().GetBool("otlp-insecure")
	logger := newLogger(cmd)

	// Signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.NewTracerProvider(ctx, endpoint, insecure)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	otelapi.SetTracerProvider(tp)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	observer, err := telemetry.NewObserver(
		otelapi.GetMeterProvider().Meter("exprtree/tool"),
		otelapi.GetTracerProvider().Tracer("exprtree/tool"),
	)
	if err != nil {
		return fmt.Errorf("initializing tool observability: %w", err)
	}

	srv := server.New(server.Config{
		Addr:         net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		MaxBody:      maxBody,
		Logger:       logger,
		Observer:     observer,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
