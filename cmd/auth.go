package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calchat/calchat/internal/config"
	"github.com/calchat/calchat/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize calchat to access your Google Calendar",
		Long: `Run the Google OAuth consent flow and store the resulting token locally.

You will be shown a URL to open in your browser. After granting access, paste
the authorization code back here. Tokens are refreshed automatically; you only
need to run this once per account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := google.NewStore(cfg.GoogleClientSecretFile, cfg.TokenDir)
			if err != nil {
				return fmt.Errorf("failed to load OAuth client secret: %w", err)
			}

			if store.HasToken(account) {
				fmt.Printf("A token for account %q already exists; continuing will replace it.\n\n", account)
			}

			fmt.Println("Open this URL in your browser and grant access:")
			fmt.Printf("\n  %s\n\n", store.AuthCodeURL())
			fmt.Print("Paste the authorization code here: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			if err := store.Exchange(cmd.Context(), account, code); err != nil {
				return fmt.Errorf("failed to exchange authorization code: %w", err)
			}

			fmt.Printf("Token stored for account %q. You can now run: calchat\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize")

	return cmd
}
