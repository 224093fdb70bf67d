package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calchat application
var rootCmd = &cobra.Command{
	Use:   "calchat",
	Short: "Manage your Google Calendar in plain language",
	Long: `calchat turns free-form requests like "move my 1:1 with Sam to Friday
morning" into Google Calendar operations, using a language model to decide
which calendar calls to make.

It can run as:
  - An interactive chat session (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calchat version %s\n" .Version}}`)

	// If no subcommand is provided, start an interactive chat by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "chat")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
