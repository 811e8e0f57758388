package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config is loaded once at startup and treated as read-only afterwards.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	LLM      LLMConfig
	Mail     MailConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

type LLMConfig struct {
	Provider     string
	Model        string
	GeminiAPIKey string
	GroqAPIKey   string
	GroqBaseURL  string
	Timeout      time.Duration
	MaxLogLength int
}

type MailConfig struct {
	Sender             string
	Password           string
	From               string
	Host               string
	Port               int
	Timeout            time.Duration
	RequireTLS         bool
	InsecureSkipVerify bool
}

type StorageConfig struct {
	TempDir     string
	MaxFileSize int64
}

type PipelineConfig struct {
	DefaultMatchThreshold int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return FromEnv()
}

// FromEnv builds a Config from the current process environment without
// touching .env files.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
		LLM: LLMConfig{
			Provider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
			Model:        getEnv("LLM_MODEL", ""),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
			GroqBaseURL:  getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", "60s"),
			MaxLogLength: getEnvAsInt("LLM_MAX_LOG_LENGTH", 200),
		},
		Mail: MailConfig{
			Sender:             getEnv("EMAIL_SENDER", ""),
			Password:           getEnv("EMAIL_PASSWORD", ""),
			From:               getEnv("EMAIL_FROM", "recruitment@localhost"),
			Host:               getEnv("SMTP_SERVER", "localhost"),
			Port:               getEnvAsInt("SMTP_PORT", 1025),
			Timeout:            getEnvAsDuration("SMTP_TIMEOUT", "15s"),
			RequireTLS:         getEnvAsBool("SMTP_REQUIRE_TLS", false),
			InsecureSkipVerify: getEnvAsBool("SMTP_INSECURE_SKIP_VERIFY", false),
		},
		Storage: StorageConfig{
			TempDir:     getEnv("TEMP_DIR", os.TempDir()),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Pipeline: PipelineConfig{
			DefaultMatchThreshold: getEnvAsInt("DEFAULT_MATCH_THRESHOLD", 70),
		},
	}
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.LLM.Provider)
		}
	case ProviderGroq:
		if c.LLM.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}

	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
	}
	if c.Mail.Host == "" {
		return fmt.Errorf("SMTP_SERVER is required")
	}
	if c.Pipeline.DefaultMatchThreshold < 0 || c.Pipeline.DefaultMatchThreshold > 100 {
		return fmt.Errorf("DEFAULT_MATCH_THRESHOLD must be between 0 and 100")
	}
	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}

	return nil
}

// HasCredentials reports whether the relay should be authenticated against.
func (m MailConfig) HasCredentials() bool {
	return m.Sender != "" && m.Password != ""
}

// FromAddress is the envelope and header sender.
func (m MailConfig) FromAddress() string {
	if m.Sender != "" {
		return m.Sender
	}
	return m.From
}

func (m MailConfig) Address() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
