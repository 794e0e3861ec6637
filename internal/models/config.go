package models

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// AI config
	AI AIConfig `yaml:"ai"`

	// Downstream billing API
	Billing BillingConfig `yaml:"billing"`

	Classifier ClassifierConfig `yaml:"classifier"`
	Retry      RetryConfig      `yaml:"retry"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	// OpenAI
	OpenAI OpenAIConfig `yaml:"openai"`

	// Gemini
	Gemini GeminiConfig `yaml:"gemini"`

	// Default provider
	DefaultProvider string `yaml:"default_provider"` // "openai" or "gemini"

	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// OpenAIConfig for OpenAI or any compatible endpoint
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // For custom endpoints
	Model   string `yaml:"model"`              // Default: "gpt-4o"
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// BillingConfig points at the downstream billing API
type BillingConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`

	// Endpoints maps service (electricity, gas, meter) to a path or absolute URL
	Endpoints map[string]string `yaml:"endpoints"`

	TimeoutSeconds  int `yaml:"timeout_seconds"`
	MaxBodyChars    int `yaml:"max_body_chars"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// ClassifierConfig tunes the routing heuristics
type ClassifierConfig struct {
	Version                  string   `yaml:"version"`
	IndicatorThreshold       int      `yaml:"indicator_threshold"`
	AsymmetricStrongMin      int      `yaml:"asymmetric_strong_min"`
	AsymmetricWeakMax        int      `yaml:"asymmetric_weak_max"`
	ElectricityOnlySuppliers []string `yaml:"electricity_only_suppliers"`
	GasOnlySuppliers         []string `yaml:"gas_only_suppliers"`
}

// RetryConfig bounds the manual retry of a failed downstream call
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// StorageConfig for MinIO
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// DatabaseConfig for the endpoint configuration store
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// LogConfig selects level and output format
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// DefaultConfig returns a configuration that runs without a config file
func DefaultConfig() *Config {
	return &Config{
		Port: 8081,
		Host: "0.0.0.0",
		AI: AIConfig{
			OpenAI:          OpenAIConfig{Model: "gpt-4o"},
			Gemini:          GeminiConfig{Model: "gemini-1.5-flash"},
			DefaultProvider: "openai",
			TimeoutSeconds:  90,
		},
		Billing: BillingConfig{
			Endpoints: map[string]string{
				"electricity": "/electricity-file",
				"gas":         "/gas-file",
				"meter":       "/meter-file",
			},
			TimeoutSeconds:  30,
			MaxBodyChars:    4096,
			CacheTTLSeconds: 60,
		},
		Classifier: ClassifierConfig{
			Version:                  "2",
			IndicatorThreshold:       3,
			AsymmetricStrongMin:      4,
			AsymmetricWeakMax:        2,
			ElectricityOnlySuppliers: []string{"electric ireland", "esb", "energia"},
			GasOnlySuppliers:         []string{"flogas", "natural gas"},
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelayMS: 500,
		},
		Storage: StorageConfig{
			Bucket: "bills",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
