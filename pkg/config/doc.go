// Package config loads typed configuration structs from environment variables.
//
// Values are parsed with github.com/caarlos0/env/v11 using `env` and
// `envDefault` struct tags. A `.env` file in the working directory is loaded
// once through github.com/joho/godotenv; variables already present in the
// environment win.
//
// Load caches the parsed value per type, so packages can call it from their
// constructors without re-reading the environment:
//
//	var cfg account.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Parse bypasses the cache and is what tests should use.
package config
