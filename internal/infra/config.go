package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	JWTSecret      string
	PublicBaseURL  string
	StoragePath    string
	StorageBaseURL string

	// Image provider (Replicate-style predictions API).
	ReplicateAPIToken   string
	ReplicateBaseURL    string
	ReplicateImageModel string
	ReplicateImg2Img    string

	// 3D mesh provider (Meshy-style task API).
	MeshAPIKey  string
	MeshBaseURL string
	MeshModel   string

	// Background removal provider.
	BGRemovalAPIKey  string
	BGRemovalBaseURL string

	// Prompt enhancement provider (Anthropic messages API).
	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string

	// Per-capability provider deadlines. The vendors never settled on a
	// single number, so these stay configuration rather than contract.
	ImageTimeout time.Duration
	Gen3DTimeout time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		StoragePath:    getEnv("STORAGE_PATH", "./data"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),

		ReplicateAPIToken:   os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:    getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		ReplicateImageModel: getEnv("REPLICATE_IMAGE_MODEL", "black-forest-labs/flux-schnell"),
		ReplicateImg2Img:    getEnv("REPLICATE_IMG2IMG_MODEL", "stability-ai/sdxl"),

		MeshAPIKey:  os.Getenv("MESH_API_KEY"),
		MeshBaseURL: getEnv("MESH_BASE_URL", "https://api.meshy.ai/v2"),
		MeshModel:   getEnv("MESH_MODEL", "meshy-4"),

		BGRemovalAPIKey:  os.Getenv("BGREMOVAL_API_KEY"),
		BGRemovalBaseURL: getEnv("BGREMOVAL_BASE_URL", "https://api.remove.bg/v1.0"),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		ImageTimeout: time.Second * time.Duration(getEnvInt("IMAGE_TIMEOUT_SECONDS", 120)),
		Gen3DTimeout: time.Second * time.Duration(getEnvInt("GEN3D_TIMEOUT_SECONDS", 240)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      splitEnv("CORS_ORIGINS", "http://localhost:3000"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ImageTimeout <= 0 || cfg.Gen3DTimeout <= 0 {
		return nil, fmt.Errorf("provider timeouts must be positive")
	}

	return cfg, nil
}

// Development reports whether the service runs with development conveniences
// (debug logging, error detail passthrough) enabled.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
