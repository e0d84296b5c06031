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

// Object store and queue backends.
const (
	StoreLocal = "local"
	StoreS3    = "s3"

	QueueInline = "inline"
	QueueSQS    = "sqs"
)

// Config holds application configuration. LLM provider credentials are not
// captured here; llm.EnvResolver re-reads them on every call.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	CORSAllowOrigin []string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	QueueBackend string
	SQSQueueURL  string
	SQSRegion    string

	MaxUploadBytes    int64
	DemoMode          bool
	PipelineDeadline  time.Duration
	MalformedPolicy   string
	LLMJSONMode       bool
	LLMMaxRetries     int
	LLMRetryBaseDelay time.Duration
	ClassifyDocuments bool

	// Token bucket applied per caller to submission endpoints.
	SubmitRatePerMinute float64
	SubmitBurst         int

	WorkerConcurrency       int
	WorkerVisibilityTimeout time.Duration
	ShutdownTimeout         time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// Values from .env files never override variables already set.
func Load() Config {
	loadEnvFiles()

	env := normalizeEnv(getEnv("APP_ENV", getEnv("ENV", "dev")))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	region := getEnv("AWS_REGION", "us-east-1")
	sqsURL := strings.TrimSpace(os.Getenv("SQS_QUEUE_URL"))

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		DatabaseURL:     dbURL,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", StoreLocal)),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       region,
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		QueueBackend: normalizeQueueBackend(getEnv("QUEUE_BACKEND", ""), sqsURL),
		SQSQueueURL:  sqsURL,
		SQSRegion:    getEnv("SQS_REGION", region),

		MaxUploadBytes:    int64(getInt("MAX_UPLOAD_BYTES", 10<<20)),
		DemoMode:          getBool("DEMO_MODE", false),
		PipelineDeadline:  getSeconds("PIPELINE_DEADLINE_SECONDS", 300),
		MalformedPolicy:   getEnv("LLM_MALFORMED_POLICY", "degrade"),
		LLMJSONMode:       getBool("LLM_JSON_MODE", true),
		LLMMaxRetries:     getInt("LLM_MAX_RETRIES", 3),
		LLMRetryBaseDelay: getDuration("LLM_RETRY_BASE_DELAY", time.Second),
		ClassifyDocuments: getBool("CLASSIFY_DOCUMENTS", true),

		SubmitRatePerMinute: getFloat("SUBMIT_RATE_PER_MINUTE", 10),
		SubmitBurst:         getInt("SUBMIT_BURST", 5),

		WorkerConcurrency:       getInt("WORKER_CONCURRENCY", 4),
		WorkerVisibilityTimeout: getSeconds("SQS_VISIBILITY_TIMEOUT_SECONDS", 1200),
		ShutdownTimeout:         getSeconds("SHUTDOWN_TIMEOUT_SECONDS", 30),
	}
}

// IsDevLike reports whether the environment allows local fallbacks such as
// in-memory repositories.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	if c.ObjectStoreType == StoreS3 && strings.TrimSpace(c.S3Bucket) == "" {
		return fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
	}
	if c.QueueBackend == QueueSQS && c.SQSQueueURL == "" {
		return fmt.Errorf("QUEUE_BACKEND=sqs requires SQS_QUEUE_URL")
	}
	if c.PipelineDeadline <= 0 {
		return fmt.Errorf("PIPELINE_DEADLINE_SECONDS must be positive")
	}
	return nil
}

// loadEnvFiles loads .env.<APP_ENV> then .env. godotenv.Load skips keys that
// are already set, so the more specific file wins and the real environment
// wins over both.
func loadEnvFiles() {
	var files []string
	if env := strings.TrimSpace(os.Getenv("APP_ENV")); env != "" {
		files = append(files, ".env."+env)
	}
	files = append(files, ".env")
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("config: load %s: %v", f, err)
		}
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getSeconds(key string, def int) time.Duration {
	secs := getInt(key, def)
	if secs <= 0 {
		secs = def
	}
	return time.Duration(secs) * time.Second
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d < 0 {
		return def
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StoreS3:
		return StoreS3
	default:
		return StoreLocal
	}
}

// normalizeQueueBackend defaults to SQS when a queue URL is present.
func normalizeQueueBackend(raw, sqsURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case QueueSQS:
		return QueueSQS
	case QueueInline:
		return QueueInline
	}
	if sqsURL != "" {
		return QueueSQS
	}
	return QueueInline
}
