// Package config loads application configuration with viper.
//
// LoadConfig merges, in increasing priority, registered defaults, a YAML
// config file, a .env file and the process environment. Environment
// variables are matched by prefix: with service "scribe", SCRIBE_API_BASE_URL
// sets api.base_url.
//
//	var cfg scribe.Config
//	if err := config.LoadConfig("scribe", &cfg); err != nil { ... }
package config
