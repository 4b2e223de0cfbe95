package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	MongoDB  MongoDBConfig
	OpenAI   OpenAIConfig
	Server   ServerConfig
	Workflow WorkflowConfig
	Worker   WorkerConfig
	Schedule ScheduleConfig
	Email    EmailConfig
}

// MongoDBConfig holds MongoDB connection details
type MongoDBConfig struct {
	URI        string
	Username   string
	Password   string
	Host       string
	Port       string
	Database   string
	AuthSource string // Database to authenticate against (default: admin)
}

// OpenAIConfig holds settings for the OpenAI-compatible chat completion provider.
// APIKey is the server default; callers may pass their own key per report.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // Empty means api.openai.com
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // Per-attempt timeout
	MaxAttempts int           // Attempts for transient errors (timeout, 429, 5xx)
	Backoff     time.Duration // Initial backoff, doubled after each attempt
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// QualityWeights are the evaluator weights; they should sum to 1.
type QualityWeights struct {
	Accuracy     float64 `yaml:"accuracy"`
	Completeness float64 `yaml:"completeness"`
	Structure    float64 `yaml:"structure"`
}

// WorkflowConfig holds the report workflow settings
type WorkflowConfig struct {
	MaxRetries           int            `yaml:"max_retries"`
	PassThreshold        float64        `yaml:"pass_threshold"`
	MissingSectionCap    float64        `yaml:"missing_section_cap"` // Highest total a report missing a required section can score
	Weights              QualityWeights `yaml:"weights"`
	MinLength            int            `yaml:"min_length"`
	MaxLength            int            `yaml:"max_length"`
	RequiredSections     []string       `yaml:"required_sections"`
	TrendDeadZone        float64        `yaml:"trend_dead_zone"`
	StoreTimeout         time.Duration  `yaml:"store_timeout"`
	RetryTemperatureStep float64        `yaml:"retry_temperature_step"`
}

// WorkerConfig sizes the report worker pool
type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

// ScheduleConfig controls periodic report generation
type ScheduleConfig struct {
	Enabled bool
}

// EmailConfig holds SendGrid email configuration
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// DefaultRequiredSections are the report sections the quality evaluator expects.
var DefaultRequiredSections = []string{
	"Executive Summary",
	"Fixed Assets",
	"Virtual Assets",
	"Integrated Analysis",
	"Conclusion",
	"Action Plan",
}

// DefaultWorkflowConfig returns the workflow settings used when nothing overrides them.
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		MaxRetries:        2,
		PassThreshold:     70,
		MissingSectionCap: 50,
		Weights: QualityWeights{
			Accuracy:     0.4,
			Completeness: 0.3,
			Structure:    0.3,
		},
		MinLength:            800,
		MaxLength:            3000,
		RequiredSections:     append([]string(nil), DefaultRequiredSections...),
		TrendDeadZone:        1.0,
		StoreTimeout:         10 * time.Second,
		RetryTemperatureStep: 0.15,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	workflow := DefaultWorkflowConfig()
	if path := getEnv("WORKFLOW_CONFIG", ""); path != "" {
		if err := loadWorkflowFile(path, &workflow); err != nil {
			return nil, err
		}
	}
	workflow.MaxRetries = getEnvInt("WORKFLOW_MAX_RETRIES", workflow.MaxRetries)
	workflow.PassThreshold = getEnvFloat("WORKFLOW_PASS_THRESHOLD", workflow.PassThreshold)
	workflow.StoreTimeout = getEnvDuration("WORKFLOW_STORE_TIMEOUT", workflow.StoreTimeout)

	config := &Config{
		MongoDB: MongoDBConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Username:   getEnv("MONGODB_USERNAME", ""),
			Password:   getEnv("MONGODB_PASSWORD", ""),
			Host:       getEnv("MONGODB_HOST", "localhost"),
			Port:       getEnv("MONGODB_PORT", "27017"),
			Database:   getEnv("MONGODB_DATABASE", "assets"),
			AuthSource: getEnv("MONGODB_AUTH_SOURCE", "admin"),
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvFloat("OPENAI_TEMPERATURE", 0.3),
			MaxTokens:   getEnvInt("OPENAI_MAX_TOKENS", 0), // 0 means no limit (or use max for model)
			Timeout:     getEnvDuration("OPENAI_TIMEOUT", 60*time.Second),
			MaxAttempts: getEnvInt("OPENAI_MAX_ATTEMPTS", 3),
			Backoff:     getEnvDuration("OPENAI_BACKOFF", time.Second),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8085"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		Workflow: workflow,
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 5),
			QueueSize:   getEnvInt("WORKER_QUEUE_SIZE", 100),
		},
		Schedule: ScheduleConfig{
			Enabled: getEnvBool("SCHEDULE_ENABLED", true),
		},
		Email: EmailConfig{
			APIKey:    getEnv("SENDGRID_API_KEY", ""),
			FromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
			FromName:  getEnv("SENDGRID_FROM_NAME", "Asset Reports"),
		},
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// loadWorkflowFile overlays the YAML file at path onto cfg. Fields absent from
// the file keep their current values.
func loadWorkflowFile(path string, cfg *WorkflowConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read workflow config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse workflow config %s: %w", path, err)
	}
	return nil
}

// ValidateConfig validates that required configuration values are present
func ValidateConfig(config *Config) error {
	if config.MongoDB.URI == "" && config.MongoDB.Host == "" {
		return fmt.Errorf("MONGODB_URI or MONGODB_HOST is required")
	}
	if config.Worker.Concurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}
	if config.OpenAI.MaxAttempts <= 0 {
		return fmt.Errorf("OPENAI_MAX_ATTEMPTS must be positive")
	}
	return ValidateWorkflow(config.Workflow)
}

// ValidateWorkflow checks the quality gate settings
func ValidateWorkflow(w WorkflowConfig) error {
	if w.MaxRetries < 0 {
		return fmt.Errorf("workflow max_retries must not be negative")
	}
	if w.PassThreshold < 0 || w.PassThreshold > 100 {
		return fmt.Errorf("workflow pass_threshold must be within [0,100], got %.2f", w.PassThreshold)
	}
	if w.MissingSectionCap < 0 || w.MissingSectionCap >= w.PassThreshold {
		return fmt.Errorf("workflow missing_section_cap must be within [0,pass_threshold), got %.2f", w.MissingSectionCap)
	}
	if w.Weights.Accuracy < 0 || w.Weights.Completeness < 0 || w.Weights.Structure < 0 {
		return fmt.Errorf("workflow weights must not be negative")
	}
	sum := w.Weights.Accuracy + w.Weights.Completeness + w.Weights.Structure
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("workflow weights must sum to 1, got %.3f", sum)
	}
	if w.MinLength <= 0 || w.MaxLength <= w.MinLength {
		return fmt.Errorf("workflow length window must satisfy 0 < min_length < max_length")
	}
	if len(w.RequiredSections) == 0 {
		return fmt.Errorf("workflow required_sections must not be empty")
	}
	return nil
}

// Helper functions for environment variable access
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
