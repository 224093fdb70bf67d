// Package config loads calchat configuration from environment variables.
//
// Settings are parsed into a single Config struct via struct tags. A local
// .env file is honored for development so credentials never need to be
// committed or exported by hand.
package config
