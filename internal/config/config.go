package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	ModelServiceURL string
	CORSOrigins     string

	RecordDurationSeconds int
	BufferSeconds         int
	DefaultWaitSeconds    int
	SampleIntervalMS      int
	InferenceTimeoutMS    int
	SeverityThreshold     float64
	AlertCountThreshold   int
	ImageSize             int
	WaitSchedule          string

	FFmpegCommand string
	CaptureFormat string
	CaptureDevice string
	ClipDir       string

	LogLevel    string
	Environment string

	DBName     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

func (p *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.DBHost, p.DBPort, p.DBUser, p.DBPassword, p.DBName, p.DBSSLMode)
}

// DSNForLog безопасный вывод DSN без пароля для логирования
func (p *Config) DSNForLog() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=*** dbname=%s sslmode=%s",
		p.DBHost, p.DBPort, p.DBUser, p.DBName, p.DBSSLMode)
}

func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func LoadConfig() *Config {
	// Загрузка .env файла (если существует)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8081"),
		ModelServiceURL: getEnv("MODEL_SERVICE_URL", "localhost:9000"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),

		RecordDurationSeconds: getEnvInt("RECORD_DURATION_SECONDS", 2),
		BufferSeconds:         getEnvInt("BUFFER_SECONDS", 2),
		DefaultWaitSeconds:    getEnvInt("DEFAULT_WAIT_SECONDS", 10),
		SampleIntervalMS:      getEnvInt("SAMPLE_INTERVAL_MS", 1000),
		InferenceTimeoutMS:    getEnvInt("INFERENCE_TIMEOUT_MS", 5000),
		SeverityThreshold:     getEnvFloat("SEVERITY_THRESHOLD", 0.6),
		AlertCountThreshold:   getEnvInt("ALERT_COUNT_THRESHOLD", 3),
		ImageSize:             getEnvInt("IMAGE_SIZE", 224),
		WaitSchedule:          getEnv("WAIT_SCHEDULE", "fixed"),

		FFmpegCommand: getEnv("FFMPEG_COMMAND", "ffmpeg"),
		CaptureFormat: getEnv("CAPTURE_FORMAT", "v4l2"),
		CaptureDevice: getEnv("CAPTURE_DEVICE", "/dev/video0"),
		ClipDir:       getEnv("CLIP_DIR", os.TempDir()),

		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		Environment: getEnv("ENVIRONMENT", "production"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "drowsy_monitor"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Проверка обязательных полей
	if cfg.SeverityThreshold <= 0 || cfg.SeverityThreshold >= 1 {
		fmt.Printf("WARNING: SEVERITY_THRESHOLD %v out of (0,1), using 0.6\n", cfg.SeverityThreshold)
		cfg.SeverityThreshold = 0.6
	}
	if cfg.RecordDurationSeconds <= 0 {
		cfg.RecordDurationSeconds = 2
	}
	if cfg.DefaultWaitSeconds <= 0 {
		cfg.DefaultWaitSeconds = 10
	}
	if cfg.ImageSize <= 0 {
		cfg.ImageSize = 224
	}
	if cfg.DBPassword == "" {
		fmt.Println("WARNING: DB_PASSWORD is not set!")
	}

	return cfg
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if floatVal, err := strconv.ParseFloat(v, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
