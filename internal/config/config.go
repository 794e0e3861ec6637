package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wattwise/bill-ingest-service/internal/models"
)

// Load reads the YAML config at path on top of models.DefaultConfig and then
// applies environment overrides. A missing file is not an error; loaded is
// false so the caller can warn about it.
func Load(path string) (cfg *models.Config, loaded bool, err error) {
	cfg = models.DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, false, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, false, fmt.Errorf("failed to parse config: %w", err)
		}
		loaded = true
	}

	if err := applyEnv(cfg); err != nil {
		return nil, loaded, err
	}
	return cfg, loaded, nil
}

// applyEnv overrides config values with environment variables if present
func applyEnv(config *models.Config) error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		config.Port = p
	}
	setString(&config.Host, "HOST")

	setString(&config.AI.DefaultProvider, "AI_PROVIDER")
	setString(&config.AI.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&config.AI.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&config.AI.OpenAI.Model, "OPENAI_MODEL")
	setString(&config.AI.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&config.AI.Gemini.Model, "GEMINI_MODEL")

	setString(&config.Billing.BaseURL, "BILLING_API_BASE_URL")
	setString(&config.Billing.Token, "BILLING_API_TOKEN")

	setString(&config.Storage.Endpoint, "MINIO_ENDPOINT")
	setString(&config.Storage.AccessKey, "MINIO_ACCESS_KEY")
	setString(&config.Storage.SecretKey, "MINIO_SECRET_KEY")
	setString(&config.Storage.Bucket, "MINIO_BUCKET")
	if ssl := os.Getenv("MINIO_USE_SSL"); ssl != "" {
		config.Storage.UseSSL = ssl == "true"
	}

	setString(&config.Database.URL, "DATABASE_URL")

	setString(&config.Log.Level, "LOG_LEVEL")
	setString(&config.Log.Format, "LOG_FORMAT")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
