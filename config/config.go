package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HttpPort string

	// S3/MinIO
	BucketEndpoint  string
	BucketAccessID  string
	BucketAccessKey string
	BucketName      string
	BucketRegion    string
	UseSSL          bool   // MinIO: false, S3: true
	StorageType     string // "minio" or "s3"

	// Redis
	RedisURL      string
	RedisPassword string

	// Postgres
	Host     string
	User     string
	Password string
	DBName   string
	Port     string

	// Clova OCR
	OcrApiURL    string
	OcrSecretKey string
	OcrTimeout   time.Duration

	// pipeline
	TempDir        string
	OcrWorkerCount int

	// others
	UploadTimeout time.Duration
	MaxFileSize   int64
}

func LoadConfig() *Config {
	return &Config{
		HttpPort:        os.Getenv("PORT"),
		BucketEndpoint:  os.Getenv("BUCKET_ENDPOINT"),
		BucketAccessID:  os.Getenv("BUCKET_ACCESS_ID"),
		BucketAccessKey: os.Getenv("BUCKET_ACCESS_KEY"),
		BucketName:      os.Getenv("BUCKET_NAME"),
		BucketRegion:    os.Getenv("BUCKET_REGION"),
		UseSSL:          os.Getenv("BUCKET_USE_SSL") == "true",
		StorageType:     os.Getenv("STORAGE_TYPE"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		Host:            os.Getenv("PG_HOST"),
		User:            os.Getenv("PG_USER"),
		Password:        os.Getenv("PG_PASSWORD"),
		DBName:          os.Getenv("PG_DB"),
		Port:            os.Getenv("PG_PORT"),
		OcrApiURL:       os.Getenv("CLOVA_OCR_API_URL"),
		OcrSecretKey:    os.Getenv("CLOVA_OCR_SECRET_KEY"),
		OcrTimeout:      envDuration("OCR_TIMEOUT", 60*time.Second),
		TempDir:         envString("TEMP_DIR", os.TempDir()),
		OcrWorkerCount:  envInt("OCR_WORKER_COUNT", 2),
		UploadTimeout:   15 * time.Minute,
		MaxFileSize:     100 * 1024 * 1024,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
