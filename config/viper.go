package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TURNSTREAM_MODEL_SEARCH.
const EnvPrefix = "TURNSTREAM"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultSettings(), reads config.toml from dir
// (if present) and binds environment variables with the TURNSTREAM_ prefix.
//
// Precedence (highest to lowest):
//  1. Environment variables (TURNSTREAM_OPENAI_TIMEOUT, ...)
//  2. config.toml values
//  3. Defaults from NewDefaultSettings()
func InitViper(dir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if dir != "" {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Load resolves the settings for dir.
func Load(dir string) (*Settings, error) {
	v, err := InitViper(dir)
	if err != nil {
		return nil, err
	}
	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return s, nil
}

// setViperDefaults registers defaults using dotted keys. Every key must be
// registered so AutomaticEnv can override it during Unmarshal.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultSettings()

	v.SetDefault("openai.api_key", d.OpenAI.APIKey)
	v.SetDefault("openai.base_url", d.OpenAI.BaseURL)
	v.SetDefault("openai.timeout", d.OpenAI.Timeout)

	v.SetDefault("model.search", d.Model.Search)
	v.SetDefault("model.reasoning", d.Model.Reasoning)
	v.SetDefault("model.reasoning_effort", d.Model.ReasoningEffort)
	v.SetDefault("model.reasoning_summary", d.Model.ReasoningSummary)

	v.SetDefault("features.reasoning", d.Features.Reasoning)
	v.SetDefault("features.web_search", d.Features.WebSearch)
	v.SetDefault("features.disable_file_search", d.Features.DisableFileSearch)

	v.SetDefault("web_search.context_size", d.WebSearch.ContextSize)
	v.SetDefault("web_search.city", d.WebSearch.City)
	v.SetDefault("web_search.country", d.WebSearch.Country)
	v.SetDefault("web_search.region", d.WebSearch.Region)
	v.SetDefault("web_search.timezone", d.WebSearch.Timezone)

	v.SetDefault("file_search.vector_store_name", d.FileSearch.VectorStoreName)
	v.SetDefault("file_search.vector_store_id", d.FileSearch.VectorStoreID)
	v.SetDefault("file_search.max_results", d.FileSearch.MaxResults)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.dsn", d.Storage.DSN)

	v.SetDefault("instructions.text", d.Instructions.Text)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
