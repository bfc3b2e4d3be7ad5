package common

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	SQLite     SQLiteConfig
	Server     ServerConfig
	OCR        OCRConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
	Ingest     IngestConfig
	Log        LogConfig
}

// DatabaseConfig holds Postgres configuration; an empty DSN disables it
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// SQLiteConfig holds the embedded store configuration; an empty path disables it
type SQLiteConfig struct {
	Path string
}

// ServerConfig holds listener addresses
type ServerConfig struct {
	GRPCAddr string
	HTTPAddr string
	// MaxUploadBytes caps multipart uploads on the HTTP surface.
	MaxUploadBytes int64
}

// OCRConfig holds text extraction configuration
type OCRConfig struct {
	TesseractBin      string
	PdftoppmBin       string
	TessdataDir       string
	Language          string
	DPI               int
	ScannedThreshold  int
	MinLineConfidence float64
	Timeout           time.Duration
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Enabled     bool
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// ExtractionConfig tunes the field extractors
type ExtractionConfig struct {
	Scheme             string
	StopOnBareTaxLines bool
	PageWorkers        int
}

// IngestConfig holds the watched-directory settings; an empty WatchDir disables watching
type IngestConfig struct {
	WatchDir    string
	InitialScan bool
	Debounce    time.Duration
	QueueSize   int
	Workers     int
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string
	Format string
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return WrapError(err, "load "+path)
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", ""),
		},
		Server: ServerConfig{
			GRPCAddr:       getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr:       getEnv("HTTP_ADDR", ":8000"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 20<<20)),
		},
		OCR: OCRConfig{
			TesseractBin:      getEnv("TESSERACT_BIN", "tesseract"),
			PdftoppmBin:       getEnv("PDFTOPPM_BIN", "pdftoppm"),
			TessdataDir:       getEnv("TESSDATA_PREFIX", ""),
			Language:          getEnv("OCR_LANG", "eng"),
			DPI:               getEnvAsInt("OCR_DPI", 300),
			ScannedThreshold:  getEnvAsInt("OCR_SCANNED_THRESHOLD", 50),
			MinLineConfidence: getEnvAsFloat64("OCR_MIN_LINE_CONFIDENCE", 0.5),
			Timeout:           getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			Enabled:     getEnvAsBool("LLM_ENABLED", false),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Extraction: ExtractionConfig{
			Scheme:             getEnv("CLASSIFIER_SCHEME", "standard"),
			StopOnBareTaxLines: getEnvAsBool("STOP_ON_BARE_TAX_LINES", false),
			PageWorkers:        getEnvAsInt("PAGE_WORKERS", 4),
		},
		Ingest: IngestConfig{
			WatchDir:    getEnv("WATCH_DIR", ""),
			InitialScan: getEnvAsBool("WATCH_INITIAL_SCAN", true),
			Debounce:    getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
			QueueSize:   getEnvAsInt("QUEUE_SIZE", 100),
			Workers:     getEnvAsInt("QUEUE_WORKERS", 2),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Server.GRPCAddr == "" && c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR or HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.LLM.Enabled && c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required when LLM_ENABLED is set", ErrInvalidInput)
	}
	switch strings.ToLower(c.Extraction.Scheme) {
	case "", "standard", "legacy":
	default:
		return NewAppError("CONFIG_ERROR", "CLASSIFIER_SCHEME must be standard or legacy", ErrInvalidInput)
	}
	if c.Extraction.PageWorkers < 1 {
		return NewAppError("CONFIG_ERROR", "PAGE_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Ingest.WatchDir != "" && (c.Ingest.Workers < 1 || c.Ingest.QueueSize < 1) {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS and QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	if c.OCR.MinLineConfidence < 0 || c.OCR.MinLineConfidence > 1 {
		return NewAppError("CONFIG_ERROR", "OCR_MIN_LINE_CONFIDENCE must be within [0,1]", ErrInvalidInput)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return NewAppError("CONFIG_ERROR", "DB_MIN_CONNS exceeds DB_MAX_CONNS", ErrInvalidInput)
	}
	return nil
}
