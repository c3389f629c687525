package config

// Settings is the persistent turnstream configuration stored as config.toml.
// The TOML layout uses sections for logical grouping.
type Settings struct {
	OpenAI       OpenAISettings      `toml:"openai" mapstructure:"openai"`
	Model        ModelSettings       `toml:"model" mapstructure:"model"`
	Features     FeatureSettings     `toml:"features" mapstructure:"features"`
	WebSearch    WebSearchSettings   `toml:"web_search" mapstructure:"web_search"`
	FileSearch   FileSearchSettings  `toml:"file_search" mapstructure:"file_search"`
	Storage      StorageSettings     `toml:"storage" mapstructure:"storage"`
	Instructions InstructionSettings `toml:"instructions" mapstructure:"instructions"`
	Log          LogSettings         `toml:"log" mapstructure:"log"`
}

// OpenAISettings configures the API client.
type OpenAISettings struct {
	APIKey  string `toml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL string `toml:"base_url,omitempty" mapstructure:"base_url"`
	// Timeout is a Go duration string such as "5m".
	Timeout string `toml:"timeout,omitempty" mapstructure:"timeout"`
}

// ModelSettings selects the models.
type ModelSettings struct {
	Search           string `toml:"search,omitempty" mapstructure:"search"`
	Reasoning        string `toml:"reasoning,omitempty" mapstructure:"reasoning"`
	ReasoningEffort  string `toml:"reasoning_effort,omitempty" mapstructure:"reasoning_effort"`
	ReasoningSummary string `toml:"reasoning_summary,omitempty" mapstructure:"reasoning_summary"`
}

// FeatureSettings holds the feature flags.
type FeatureSettings struct {
	Reasoning         bool `toml:"reasoning" mapstructure:"reasoning"`
	WebSearch         bool `toml:"web_search" mapstructure:"web_search"`
	DisableFileSearch bool `toml:"disable_file_search" mapstructure:"disable_file_search"`
}

// WebSearchSettings tunes the web search tool.
type WebSearchSettings struct {
	ContextSize string `toml:"context_size,omitempty" mapstructure:"context_size"`
	City        string `toml:"city,omitempty" mapstructure:"city"`
	Country     string `toml:"country,omitempty" mapstructure:"country"`
	Region      string `toml:"region,omitempty" mapstructure:"region"`
	Timezone    string `toml:"timezone,omitempty" mapstructure:"timezone"`
}

// FileSearchSettings names the vector store used for file search.
type FileSearchSettings struct {
	VectorStoreName string `toml:"vector_store_name,omitempty" mapstructure:"vector_store_name"`
	VectorStoreID   string `toml:"vector_store_id,omitempty" mapstructure:"vector_store_id"`
	MaxResults      int64  `toml:"max_results,omitempty" mapstructure:"max_results"`
}

// StorageSettings selects the session store backend.
type StorageSettings struct {
	// Driver is one of memory, sqlite or postgres.
	Driver string `toml:"driver,omitempty" mapstructure:"driver"`
	DSN    string `toml:"dsn,omitempty" mapstructure:"dsn"`
}

// InstructionSettings holds the system/developer instruction template.
type InstructionSettings struct {
	Text string `toml:"text,omitempty" mapstructure:"text"`
}

// LogSettings configures logging.
type LogSettings struct {
	Level  string `toml:"level,omitempty" mapstructure:"level"`
	Format string `toml:"format,omitempty" mapstructure:"format"`
}
