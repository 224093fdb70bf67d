package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings for calchat.
type Config struct {
	// LLM settings
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`

	// Supabase chat log store; logging is disabled when either is empty
	SupabaseURL string `env:"SUPABASE_URL"`
	SupabaseKey string `env:"SUPABASE_KEY"`

	// Google OAuth client descriptor (application identity)
	GoogleClientSecretFile string `env:"GOOGLE_CLIENT_SECRET_FILE" envDefault:"client_secret.json"`

	// Token cache directory override; defaults to the user cache dir
	TokenDir string `env:"CALCHAT_TOKEN_DIR"`

	// Calendar to operate on
	CalendarID string `env:"CALENDAR_ID" envDefault:"primary"`

	// Upper bound on model-driven tool rounds within a single turn
	MaxToolRounds int `env:"CALCHAT_MAX_TOOL_ROUNDS" envDefault:"8"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first if present; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// ChatLogEnabled reports whether the Supabase chat log store is configured.
func (c *Config) ChatLogEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}
