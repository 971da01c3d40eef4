package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Storage   StorageConfig
	Log       LogConfig
	Generator GeneratorConfig
	Extractor ExtractorConfig
	Pipeline  PipelineConfig
}

// GeneratorProviderConfig holds settings for a single answer-generation provider.
type GeneratorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// GeneratorConfig holds answer-generation settings with multi-provider support.
type GeneratorConfig struct {
	Primary   GeneratorProviderConfig `mapstructure:"primary"`
	Secondary GeneratorProviderConfig `mapstructure:"secondary"`
	Tertiary  GeneratorProviderConfig `mapstructure:"tertiary"`

	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	CallTimeoutSecs   int `mapstructure:"call_timeout_secs"`
}

// Providers returns the configured providers in fallback order.
func (g *GeneratorConfig) Providers() []*GeneratorProviderConfig {
	var out []*GeneratorProviderConfig
	for _, p := range []*GeneratorProviderConfig{&g.Primary, &g.Secondary, &g.Tertiary} {
		if p.Provider != "" {
			out = append(out, p)
		}
	}
	return out
}

// CallTimeout returns the per-call generation timeout.
func (g *GeneratorConfig) CallTimeout() time.Duration {
	if g.CallTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(g.CallTimeoutSecs) * time.Second
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// DBConfig holds database connection settings. Driver is "pgx" or "sqlite".
type DBConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the connection string for the configured driver.
func (d *DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// StorageConfig selects where uploaded documents live while a batch is processed.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"` // local | s3
	TempDir   string `mapstructure:"temp_dir"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExtractorConfig holds text extraction settings.
type ExtractorConfig struct {
	MaxFileSizeMB     int64  `mapstructure:"max_file_size_mb"`
	SampleLength      int    `mapstructure:"sample_length"`
	TesseractPath     string `mapstructure:"tesseract_path"`
	OCRLanguage       string `mapstructure:"ocr_language"`
	MaxImageDimension int    `mapstructure:"max_image_dimension"`
}

// PipelineConfig holds orchestration and scoring settings.
type PipelineConfig struct {
	Workers            int     `mapstructure:"workers"`
	ConfidenceCap      int     `mapstructure:"confidence_cap"`
	AIConfidence       float64 `mapstructure:"ai_confidence"`
	FallbackConfidence float64 `mapstructure:"fallback_confidence"`
	DefaultAnswer      string  `mapstructure:"default_answer"`
	// CategoryDefaults maps a question category to its fallback answer, e.g.
	// INTAKE_PIPELINE_CATEGORY_DEFAULTS='{"relocation":"No"}'.
	CategoryDefaults map[string]string `mapstructure:"category_defaults"`
}

// Load reads configuration from environment variables with the INTAKE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.cors_origins", "")

	// DB defaults
	v.SetDefault("db.driver", "pgx")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "intake")
	v.SetDefault("db.password", "intake_secret")
	v.SetDefault("db.name", "intake_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.path", "intake.db")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "intake-uploads")
	v.SetDefault("s3.endpoint", "")

	// Storage defaults
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.temp_dir", "")
	v.SetDefault("storage.key_prefix", "uploads")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Generator defaults
	v.SetDefault("generator.primary.provider", "")
	v.SetDefault("generator.primary.api_key", "")
	v.SetDefault("generator.primary.default_model", "")
	v.SetDefault("generator.primary.max_retries", 2)
	v.SetDefault("generator.primary.timeout_secs", 60)
	v.SetDefault("generator.secondary.provider", "")
	v.SetDefault("generator.secondary.api_key", "")
	v.SetDefault("generator.secondary.default_model", "")
	v.SetDefault("generator.secondary.max_retries", 2)
	v.SetDefault("generator.secondary.timeout_secs", 60)
	v.SetDefault("generator.tertiary.provider", "")
	v.SetDefault("generator.tertiary.api_key", "")
	v.SetDefault("generator.tertiary.default_model", "")
	v.SetDefault("generator.tertiary.max_retries", 2)
	v.SetDefault("generator.tertiary.timeout_secs", 60)
	v.SetDefault("generator.requests_per_minute", 60)
	v.SetDefault("generator.call_timeout_secs", 30)

	// Extractor defaults
	v.SetDefault("extractor.max_file_size_mb", 10)
	v.SetDefault("extractor.sample_length", 500)
	v.SetDefault("extractor.tesseract_path", "tesseract")
	v.SetDefault("extractor.ocr_language", "eng")
	v.SetDefault("extractor.max_image_dimension", 2000)

	// Pipeline defaults
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.confidence_cap", 3)
	v.SetDefault("pipeline.ai_confidence", 0.7)
	v.SetDefault("pipeline.fallback_confidence", 0.3)
	v.SetDefault("pipeline.default_answer", "Not specified")
	v.SetDefault("pipeline.category_defaults", map[string]string{})

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "INTAKE_SERVER_PORT",
		"server.read_timeout":               "INTAKE_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "INTAKE_SERVER_WRITE_TIMEOUT",
		"server.environment":                "INTAKE_SERVER_ENVIRONMENT",
		"server.cors_origins":               "INTAKE_SERVER_CORS_ORIGINS",
		"db.driver":                         "INTAKE_DB_DRIVER",
		"db.host":                           "INTAKE_DB_HOST",
		"db.port":                           "INTAKE_DB_PORT",
		"db.user":                           "INTAKE_DB_USER",
		"db.password":                       "INTAKE_DB_PASSWORD",
		"db.name":                           "INTAKE_DB_NAME",
		"db.sslmode":                        "INTAKE_DB_SSLMODE",
		"db.path":                           "INTAKE_DB_PATH",
		"db.max_open":                       "INTAKE_DB_MAX_OPEN",
		"db.max_idle":                       "INTAKE_DB_MAX_IDLE",
		"s3.region":                         "INTAKE_S3_REGION",
		"s3.bucket":                         "INTAKE_S3_BUCKET",
		"s3.endpoint":                       "INTAKE_S3_ENDPOINT",
		"s3.access_key":                     "INTAKE_S3_ACCESS_KEY",
		"s3.secret_key":                     "INTAKE_S3_SECRET_KEY",
		"storage.backend":                   "INTAKE_STORAGE_BACKEND",
		"storage.temp_dir":                  "INTAKE_STORAGE_TEMP_DIR",
		"storage.key_prefix":                "INTAKE_STORAGE_KEY_PREFIX",
		"log.level":                         "INTAKE_LOG_LEVEL",
		"log.format":                        "INTAKE_LOG_FORMAT",
		"generator.primary.provider":        "INTAKE_GENERATOR_PRIMARY_PROVIDER",
		"generator.primary.api_key":         "INTAKE_GENERATOR_PRIMARY_API_KEY",
		"generator.primary.default_model":   "INTAKE_GENERATOR_PRIMARY_DEFAULT_MODEL",
		"generator.primary.max_retries":     "INTAKE_GENERATOR_PRIMARY_MAX_RETRIES",
		"generator.primary.timeout_secs":    "INTAKE_GENERATOR_PRIMARY_TIMEOUT_SECS",
		"generator.secondary.provider":      "INTAKE_GENERATOR_SECONDARY_PROVIDER",
		"generator.secondary.api_key":       "INTAKE_GENERATOR_SECONDARY_API_KEY",
		"generator.secondary.default_model": "INTAKE_GENERATOR_SECONDARY_DEFAULT_MODEL",
		"generator.secondary.max_retries":   "INTAKE_GENERATOR_SECONDARY_MAX_RETRIES",
		"generator.secondary.timeout_secs":  "INTAKE_GENERATOR_SECONDARY_TIMEOUT_SECS",
		"generator.tertiary.provider":       "INTAKE_GENERATOR_TERTIARY_PROVIDER",
		"generator.tertiary.api_key":        "INTAKE_GENERATOR_TERTIARY_API_KEY",
		"generator.tertiary.default_model":  "INTAKE_GENERATOR_TERTIARY_DEFAULT_MODEL",
		"generator.tertiary.max_retries":    "INTAKE_GENERATOR_TERTIARY_MAX_RETRIES",
		"generator.tertiary.timeout_secs":   "INTAKE_GENERATOR_TERTIARY_TIMEOUT_SECS",
		"generator.requests_per_minute":     "INTAKE_GENERATOR_REQUESTS_PER_MINUTE",
		"generator.call_timeout_secs":       "INTAKE_GENERATOR_CALL_TIMEOUT_SECS",
		"extractor.max_file_size_mb":        "INTAKE_EXTRACTOR_MAX_FILE_SIZE_MB",
		"extractor.sample_length":           "INTAKE_EXTRACTOR_SAMPLE_LENGTH",
		"extractor.tesseract_path":          "INTAKE_EXTRACTOR_TESSERACT_PATH",
		"extractor.ocr_language":            "INTAKE_EXTRACTOR_OCR_LANGUAGE",
		"extractor.max_image_dimension":     "INTAKE_EXTRACTOR_MAX_IMAGE_DIMENSION",
		"pipeline.workers":                  "INTAKE_PIPELINE_WORKERS",
		"pipeline.confidence_cap":           "INTAKE_PIPELINE_CONFIDENCE_CAP",
		"pipeline.ai_confidence":            "INTAKE_PIPELINE_AI_CONFIDENCE",
		"pipeline.fallback_confidence":      "INTAKE_PIPELINE_FALLBACK_CONFIDENCE",
		"pipeline.default_answer":           "INTAKE_PIPELINE_DEFAULT_ANSWER",
		"pipeline.category_defaults":        "INTAKE_PIPELINE_CATEGORY_DEFAULTS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INTAKE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INTAKE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		CORSOrigins:  splitList(v.GetString("server.cors_origins")),
	}
	cfg.DB = DBConfig{
		Driver:   v.GetString("db.driver"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		Path:     v.GetString("db.path"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Storage = StorageConfig{
		Backend:   v.GetString("storage.backend"),
		TempDir:   v.GetString("storage.temp_dir"),
		KeyPrefix: v.GetString("storage.key_prefix"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Generator = GeneratorConfig{
		Primary:           providerConfig(v, "generator.primary"),
		Secondary:         providerConfig(v, "generator.secondary"),
		Tertiary:          providerConfig(v, "generator.tertiary"),
		RequestsPerMinute: v.GetInt("generator.requests_per_minute"),
		CallTimeoutSecs:   v.GetInt("generator.call_timeout_secs"),
	}
	cfg.Extractor = ExtractorConfig{
		MaxFileSizeMB:     v.GetInt64("extractor.max_file_size_mb"),
		SampleLength:      v.GetInt("extractor.sample_length"),
		TesseractPath:     v.GetString("extractor.tesseract_path"),
		OCRLanguage:       v.GetString("extractor.ocr_language"),
		MaxImageDimension: v.GetInt("extractor.max_image_dimension"),
	}
	cfg.Pipeline = PipelineConfig{
		Workers:            v.GetInt("pipeline.workers"),
		ConfidenceCap:      v.GetInt("pipeline.confidence_cap"),
		AIConfidence:       v.GetFloat64("pipeline.ai_confidence"),
		FallbackConfidence: v.GetFloat64("pipeline.fallback_confidence"),
		DefaultAnswer:      v.GetString("pipeline.default_answer"),
		CategoryDefaults:   v.GetStringMapString("pipeline.category_defaults"),
	}

	if cfg.Pipeline.Workers <= 0 {
		return nil, fmt.Errorf("pipeline.workers must be positive, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.ConfidenceCap <= 0 {
		return nil, fmt.Errorf("pipeline.confidence_cap must be positive, got %d", cfg.Pipeline.ConfidenceCap)
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) GeneratorProviderConfig {
	return GeneratorProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}

// splitList parses a comma-separated env value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
