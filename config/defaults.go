package config

const (
	defaultTimeout          = "5m"
	defaultSearchModel      = "gpt-4o"
	defaultReasoningModel   = "o4-mini"
	defaultReasoningEffort  = "medium"
	defaultReasoningSummary = "auto"
	defaultContextSize      = "medium"
	defaultVectorStoreName  = "turnstream"
	defaultMaxResults       = 10
	defaultStorageDriver    = "sqlite"
	defaultStorageDSN       = "turnstream.db"
	defaultLogLevel         = "info"
	defaultLogFormat        = "pretty"
	defaultInstructions     = "You are a concise assistant. Today is {{.Date}}."
)

// NewDefaultSettings returns Settings with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultSettings() *Settings {
	return &Settings{
		OpenAI: OpenAISettings{Timeout: defaultTimeout},
		Model: ModelSettings{
			Search:           defaultSearchModel,
			Reasoning:        defaultReasoningModel,
			ReasoningEffort:  defaultReasoningEffort,
			ReasoningSummary: defaultReasoningSummary,
		},
		WebSearch:    WebSearchSettings{ContextSize: defaultContextSize},
		FileSearch:   FileSearchSettings{VectorStoreName: defaultVectorStoreName, MaxResults: defaultMaxResults},
		Storage:      StorageSettings{Driver: defaultStorageDriver, DSN: defaultStorageDSN},
		Instructions: InstructionSettings{Text: defaultInstructions},
		Log:          LogSettings{Level: defaultLogLevel, Format: defaultLogFormat},
	}
}
