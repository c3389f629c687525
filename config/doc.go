// Package config loads and saves turnstream settings.
//
// Settings are resolved with viper from defaults, an optional config.toml
// and TURNSTREAM_* environment variables, and written back with
// BurntSushi/toml. EngineConfig maps them onto engine.Config.
package config
