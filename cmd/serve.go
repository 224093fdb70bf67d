package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/calchat/calchat/internal/calendar"
	"github.com/calchat/calchat/internal/config"
	"github.com/calchat/calchat/internal/google"
	"github.com/calchat/calchat/internal/instrumentation"
	"github.com/calchat/calchat/internal/server"
	"github.com/calchat/calchat/internal/tools"
)

func newServeCmd() *cobra.Command {
	var account, calendarID, metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run calchat as an MCP server over stdio",
		Long: `Expose the calendar tools (create_event, list_events, update_event,
cancel_event) to MCP-capable AI clients over stdio. The Google Calendar client
is created lazily on the first tool call, so the server starts even before
the account is authorized.

Prometheus metrics can be served on a dedicated port with --metrics-addr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if calendarID == "" {
				calendarID = cfg.CalendarID
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := google.NewStore(cfg.GoogleClientSecretFile, cfg.TokenDir)
			if err != nil {
				return fmt.Errorf("failed to load OAuth client secret: %w", err)
			}

			instrConfig := instrumentation.DefaultConfig()
			instrConfig.ServiceVersion = version
			provider, err := instrumentation.NewProvider(ctx, instrConfig)
			if err != nil {
				return fmt.Errorf("failed to initialize instrumentation: %w", err)
			}
			defer func() { _ = provider.Shutdown(context.Background()) }()

			serverContext, err := server.NewServerContext(ctx, store)
			if err != nil {
				return fmt.Errorf("failed to create server context: %w", err)
			}
			defer func() { _ = serverContext.Shutdown() }()
			serverContext.SetMetrics(provider.Metrics())

			registry := tools.NewRegistry(provider.Metrics())
			toolset := tools.NewToolset(func(context.Context) (*calendar.Client, error) {
				return serverContext.CalendarClientForAccount(account)
			}, calendarID)
			if err := toolset.Register(registry); err != nil {
				return err
			}

			mcpSrv := mcpserver.NewMCPServer("calchat", version,
				mcpserver.WithToolCapabilities(true),
			)
			if err := server.RegisterMCPTools(mcpSrv, registry); err != nil {
				return err
			}

			if metricsAddr != "" && provider.Enabled() {
				metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
					Addr:                    metricsAddr,
					InstrumentationProvider: provider,
				})
				if err != nil {
					return fmt.Errorf("failed to create metrics server: %w", err)
				}
				go func() {
					if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
						slog.Error("metrics server failed", "error", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
					defer cancel()
					_ = metricsServer.Shutdown(shutdownCtx)
				}()
			}

			return runStdioServer(mcpSrv)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar ID to operate on (default: CALENDAR_ID or 'primary')")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for the Prometheus metrics server (e.g. ':9090'); disabled when empty")

	return cmd
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
