// Package config loads the application configuration once at process start.
//
// Values come from three layers, later layers winning: built-in defaults,
// a .env file in the working directory, and real process environment
// variables. The resulting Config is passed by reference to every component
// that needs it — nothing reads os.Getenv after Load returns.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const (
	defaultAppEnv      = "local"
	defaultAppPort     = "8080"
	defaultJWTSecret   = "change-me-in-production"
	defaultMongoURI    = "mongodb://localhost:27017"
	defaultMongoDB     = "campusmart"
	defaultRedisAddr   = "localhost:6379"
	defaultFrontendURL = "http://localhost:3000"
)

// Config holds every runtime setting the server needs.
type Config struct {
	AppEnv  string
	AppPort string

	JWTSecret string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string

	FrontendURL string

	// Campus CAS single sign-on.
	CASBaseURL    string // e.g. https://login.iiit.ac.in/cas
	CASServiceURL string // public base URL of this backend

	// Human-verification (captcha) gate on login.
	CaptchaVerifyURL string
	CaptchaSecret    string

	// Generative-text provider for the support chat proxy.
	GenAIBaseURL string
	GenAIModel   string
	GenAIKey     string

	// Product image storage.
	StorageDisk      string // "local" or "s3"
	StorageLocalRoot string
	StorageURL       string
	S3Bucket         string
	S3Region         string
	S3Key            string
	S3Secret         string
	S3Endpoint       string
	S3URL            string

	// Optional MongoDB log sink (empty = disabled).
	LogMongoURI        string
	LogMongoCollection string
}

// Load builds a Config from defaults, an optional .env file, and the
// process environment.
func Load() (*Config, error) {
	values := map[string]string{}

	if err := mergeDotEnv(".env", values); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	get := func(key, fallback string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		if v := strings.TrimSpace(values[key]); v != "" {
			return v
		}
		return fallback
	}

	return &Config{
		AppEnv:  get("APP_ENV", defaultAppEnv),
		AppPort: get("APP_PORT", defaultAppPort),

		JWTSecret: get("JWT_SECRET", defaultJWTSecret),

		MongoURI: get("MONGO_URI", defaultMongoURI),
		MongoDB:  get("MONGO_DB", defaultMongoDB),

		RedisAddr:     get("REDIS_ADDR", defaultRedisAddr),
		RedisPassword: get("REDIS_PASSWORD", ""),

		FrontendURL: get("FRONTEND_URL", defaultFrontendURL),

		CASBaseURL:    get("CAS_BASE_URL", ""),
		CASServiceURL: get("CAS_SERVICE_URL", "http://localhost:8080"),

		CaptchaVerifyURL: get("CAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		CaptchaSecret:    get("CAPTCHA_SECRET", ""),

		GenAIBaseURL: get("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GenAIModel:   get("GENAI_MODEL", "gemini-pro"),
		GenAIKey:     get("GENAI_API_KEY", ""),

		StorageDisk:      get("STORAGE_DISK", "local"),
		StorageLocalRoot: get("STORAGE_LOCAL_ROOT", "storage"),
		StorageURL:       get("STORAGE_URL", "http://localhost:8080/storage"),
		S3Bucket:         get("S3_BUCKET", ""),
		S3Region:         get("S3_REGION", "us-east-1"),
		S3Key:            get("S3_KEY", ""),
		S3Secret:         get("S3_SECRET", ""),
		S3Endpoint:       get("S3_ENDPOINT", ""),
		S3URL:            get("S3_URL", ""),

		LogMongoURI:        get("LOG_MONGO_URI", ""),
		LogMongoCollection: get("LOG_MONGO_COLLECTION", "logs"),
	}, nil
}

// Production reports whether the app runs with production settings.
func (c *Config) Production() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}
