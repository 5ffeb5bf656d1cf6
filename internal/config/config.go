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

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	LLM      LLMConfig
	Qdrant   QdrantConfig
	TTS      TTSConfig
	STT      STTConfig
	Worker   WorkerConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type StorageConfig struct {
	ArtifactPath string
	MaxFileSize  int64
	S3           S3Config
}

type S3Config struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type LLMConfig struct {
	Provider        string
	GeminiAPIKey    string
	AnthropicAPIKey string
	MaxRetries      int
}

type QdrantConfig struct {
	Enabled    bool
	URL        string
	APIKey     string
	Collection string
}

type TTSConfig struct {
	Provider     string
	LanguageCode string
	DefaultVoice string
}

type STTConfig struct {
	Provider      string
	LanguageCode  string
	MinAudioBytes int64
	MaxAudioBytes int64
	Timeout       time.Duration
}

type WorkerConfig struct {
	Concurrency       int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
}

type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	SessionTopic string
	AnswerTopic  string
}

type RedisConfig struct {
	URL        string
	SessionTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ai_interviewer"),
		},
		Storage: StorageConfig{
			ArtifactPath: getEnv("ARTIFACT_PATH", "./data/artifacts"),
			MaxFileSize:  getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			S3: S3Config{
				Enabled:   getEnvAsBool("S3_ENABLED", false),
				Endpoint:  getEnv("S3_ENDPOINT", "s3.amazonaws.com"),
				AccessKey: getEnv("S3_ACCESS_KEY", ""),
				SecretKey: getEnv("S3_SECRET_KEY", ""),
				Bucket:    getEnv("S3_BUCKET", "ai-interviewer-artifacts"),
				Region:    getEnv("S3_REGION", "us-east-1"),
				UseSSL:    getEnvAsBool("S3_USE_SSL", true),
			},
		},
		LLM: LLMConfig{
			Provider:        getEnv("LLM_PROVIDER", "gemini"),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			MaxRetries:      getEnvAsInt("LLM_MAX_RETRIES", 3),
		},
		Qdrant: QdrantConfig{
			Enabled:    getEnvAsBool("QDRANT_ENABLED", false),
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "interview_question_bank"),
		},
		TTS: TTSConfig{
			Provider:     getEnv("TTS_PROVIDER", "google"),
			LanguageCode: getEnv("TTS_LANGUAGE_CODE", "en-US"),
			DefaultVoice: getEnv("TTS_DEFAULT_VOICE", "en-US-Neural2-F"),
		},
		STT: STTConfig{
			Provider:      getEnv("STT_PROVIDER", "google"),
			LanguageCode:  getEnv("STT_LANGUAGE_CODE", "en-US"),
			MinAudioBytes: getEnvAsInt64("STT_MIN_AUDIO_BYTES", 1000),
			MaxAudioBytes: getEnvAsInt64("STT_MAX_AUDIO_BYTES", 10485760),
			Timeout:       getEnvAsDuration("STT_TIMEOUT", "30s"),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 3),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "2s"),
		},
		Kafka: KafkaConfig{
			Enabled:      getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:      getEnvAsSlice("KAFKA_BROKERS", "localhost:9092"),
			SessionTopic: getEnv("KAFKA_SESSION_TOPIC", "interview.session-events"),
			AnswerTopic:  getEnv("KAFKA_ANSWER_TOPIC", "interview.answer-events"),
		},
		Redis: RedisConfig{
			URL:        getEnv("REDIS_URL", ""),
			SessionTTL: getEnvAsDuration("SPEECH_SESSION_TTL", "2h"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
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

func getEnvAsSlice(key string, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
