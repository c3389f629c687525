package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hupe1980/turnstream/engine"
	"github.com/hupe1980/turnstream/model"
)

// FileName is the settings file looked up in the config directory.
const FileName = "config.toml"

// Save writes s to config.toml in dir, creating dir if needed.
func Save(dir string, s *Settings) error {
	if s == nil {
		return errors.New("cannot save nil settings")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Timeout parses the configured request timeout. An empty value means no
// explicit timeout.
func (s *Settings) Timeout() (time.Duration, error) {
	if s.OpenAI.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.OpenAI.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid openai.timeout %q: %w", s.OpenAI.Timeout, err)
	}
	return d, nil
}

// EngineConfig converts the settings into the orchestrator configuration.
func (s *Settings) EngineConfig() (engine.Config, error) {
	timeout, err := s.Timeout()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		SearchModel:      s.Model.Search,
		ReasoningModel:   s.Model.Reasoning,
		ReasoningEffort:  s.Model.ReasoningEffort,
		ReasoningSummary: s.Model.ReasoningSummary,
		Instructions:     s.Instructions.Text,
		Timeout:          timeout,
		Flags: engine.Flags{
			Reasoning:         s.Features.Reasoning,
			WebSearch:         s.Features.WebSearch,
			DisableFileSearch: s.Features.DisableFileSearch,
		},
		WebSearch: engine.WebSearchConfig{
			ContextSize: s.WebSearch.ContextSize,
			Location: model.UserLocation{
				City:     s.WebSearch.City,
				Country:  s.WebSearch.Country,
				Region:   s.WebSearch.Region,
				Timezone: s.WebSearch.Timezone,
			},
		},
		FileSearch: engine.FileSearchConfig{
			VectorStoreName: s.FileSearch.VectorStoreName,
			VectorStoreID:   s.FileSearch.VectorStoreID,
			MaxResults:      s.FileSearch.MaxResults,
		},
	}, nil
}

// Redacted returns a copy safe for display.
func (s *Settings) Redacted() *Settings {
	cp := *s
	if cp.OpenAI.APIKey != "" {
		cp.OpenAI.APIKey = "********"
	}
	return &cp
}
