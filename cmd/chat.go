package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/calchat/calchat/internal/agent"
	"github.com/calchat/calchat/internal/calendar"
	"github.com/calchat/calchat/internal/chatlog"
	"github.com/calchat/calchat/internal/config"
	"github.com/calchat/calchat/internal/google"
	"github.com/calchat/calchat/internal/instrumentation"
	"github.com/calchat/calchat/internal/llm"
	"github.com/calchat/calchat/internal/tools"
)

func newChatCmd() *cobra.Command {
	var account, calendarID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive calendar chat session",
		Long: `Start an interactive session. Type requests like "what's on my calendar
tomorrow?" or "book lunch with Maria on Friday at noon"; the assistant calls
the Google Calendar API on your behalf and confirms every change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.OpenAIAPIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is required; set it in the environment or a .env file")
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
			if !store.HasToken(account) {
				return fmt.Errorf("no Google token stored for account %q; run: calchat auth", account)
			}

			instrConfig := instrumentation.DefaultConfig()
			instrConfig.ServiceVersion = version
			provider, err := instrumentation.NewProvider(ctx, instrConfig)
			if err != nil {
				return fmt.Errorf("failed to initialize instrumentation: %w", err)
			}
			defer func() { _ = provider.Shutdown(context.Background()) }()

			calClient, err := calendar.New(ctx, account, store)
			if err != nil {
				return fmt.Errorf("failed to create Calendar client: %w", err)
			}
			calClient = calClient.WithMetrics(provider.Metrics())

			registry := tools.NewRegistry(provider.Metrics())
			toolset := tools.NewToolset(tools.StaticClient(calClient), calendarID)
			if err := toolset.Register(registry); err != nil {
				return err
			}

			sessionID := uuid.NewString()

			var chatLogger chatlog.Logger = chatlog.Nop{}
			if cfg.ChatLogEnabled() {
				chatLogger = chatlog.New(cfg.SupabaseURL, cfg.SupabaseKey, sessionID, slog.Default()).
					WithMetrics(provider.Metrics())
			}

			ag := agent.New(
				llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel),
				registry,
				chatLogger,
				agent.Options{
					SessionID:     sessionID,
					Model:         cfg.OpenAIModel,
					MaxToolRounds: cfg.MaxToolRounds,
					Metrics:       provider.Metrics(),
				},
			)

			return runChatLoop(ctx, cmd, ag)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar ID to operate on (default: CALENDAR_ID or 'primary')")

	return cmd
}

// runChatLoop reads user requests line by line until EOF, interrupt, or an
// explicit exit command.
func runChatLoop(ctx context.Context, cmd *cobra.Command, ag *agent.Agent) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "calchat %s - ask about your calendar, or type \"exit\" to quit.\n", version)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "-> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		fmt.Fprintln(out, ag.Turn(ctx, line))
	}

	fmt.Fprintln(out, "Bye.")
	return scanner.Err()
}
