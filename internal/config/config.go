package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Placeholder values shipped in .env.example; a config carrying them is
// treated as unconfigured.
const (
	placeholderAPIKey    = "your-api-key"
	placeholderProjectID = "your-project-id"
)

type Config struct {
	Addr  string
	Env   string
	Cloud CloudConfig
}

// CloudConfig is the remote backend surface. AuthDomain carries the
// database endpoint host, ProjectID names the namespace/database, and
// APIKey is the credential. The remaining fields identify the project
// to companion tooling and are not needed to connect.
type CloudConfig struct {
	APIKey            string
	AuthDomain        string
	ProjectID         string
	StorageBucket     string
	MessagingSenderID string
	AppID             string
}

// Configured reports whether the cloud backend should be used at all:
// API key and project id must both be present and not placeholders.
func (c CloudConfig) Configured() bool {
	return c.APIKey != "" && c.APIKey != placeholderAPIKey &&
		c.ProjectID != "" && c.ProjectID != placeholderProjectID
}

// Endpoint returns the WebSocket RPC URL derived from the auth domain.
func (c CloudConfig) Endpoint() string {
	domain := c.AuthDomain
	if domain == "" {
		domain = "localhost:8000"
	}
	if strings.Contains(domain, "://") {
		return strings.TrimSuffix(domain, "/") + "/rpc"
	}
	return "ws://" + domain + "/rpc"
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr: getEnv("ADDR", ":8080"),
		Env:  getEnv("ENV", "development"),
		Cloud: CloudConfig{
			APIKey:            getEnv("CLOUD_API_KEY", ""),
			AuthDomain:        getEnv("CLOUD_AUTH_DOMAIN", ""),
			ProjectID:         getEnv("CLOUD_PROJECT_ID", ""),
			StorageBucket:     getEnv("CLOUD_STORAGE_BUCKET", ""),
			MessagingSenderID: getEnv("CLOUD_MESSAGING_SENDER_ID", ""),
			AppID:             getEnv("CLOUD_APP_ID", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
