package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tfdcommunity/pkg/storage"
)

// ConfigPath is the default config location, overridable with CONFIG_PATH.
var ConfigPath = "config.yaml"

const (
	defaultPort           = "8001"
	defaultLogLevel       = "info"
	defaultUploadMaxBytes = 5 << 20
	defaultPresignTTL     = 15 * time.Minute

	// MemoryDatabaseURL selects the in-process store.
	MemoryDatabaseURL = "memory"
)

// ObjectStoreConfig configures image uploads. Uploads are disabled when Endpoint is empty.
type ObjectStoreConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"useSSL"`
	PresignTTL string `yaml:"presignTTL"`
}

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port           string            `yaml:"port"`
	DatabaseURL    string            `yaml:"databaseURL"`
	JWTSecretKey   string            `yaml:"jwtSecretKey"`
	CORSOrigins    []string          `yaml:"corsOrigins"`
	LogLevel       string            `yaml:"logLevel"`
	RedisAddr      string            `yaml:"redisAddr"`
	RedisPassword  string            `yaml:"redisPassword"`
	TrustedProxies []string          `yaml:"trustedProxies"`
	ObjectStore    ObjectStoreConfig `yaml:"objectStore"`
	UploadMaxBytes int64             `yaml:"uploadMaxBytes"`
}

// PathFromEnv returns CONFIG_PATH or the default path.
func PathFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("CONFIG_PATH")); v != "" {
		return v
	}
	return ConfigPath
}

// Load reads config from path, applies environment overrides and validates.
// A missing file is not an error so the service can be configured from env alone.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		cfg.JWTSecretKey = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = SplitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.TrustedProxies = SplitList(v)
	}
	if v := os.Getenv("OBJECT_STORE_ENDPOINT"); v != "" {
		cfg.ObjectStore.Endpoint = v
	}
	if v := os.Getenv("OBJECT_STORE_ACCESS_KEY"); v != "" {
		cfg.ObjectStore.AccessKey = v
	}
	if v := os.Getenv("OBJECT_STORE_SECRET_KEY"); v != "" {
		cfg.ObjectStore.SecretKey = v
	}
	if v := os.Getenv("OBJECT_STORE_BUCKET"); v != "" {
		cfg.ObjectStore.Bucket = v
	}
	if v := os.Getenv("OBJECT_STORE_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid OBJECT_STORE_USE_SSL %q", v)
		}
		cfg.ObjectStore.UseSSL = b
	}
	if v := os.Getenv("OBJECT_STORE_PRESIGN_TTL"); v != "" {
		cfg.ObjectStore.PresignTTL = v
	}
	if v := os.Getenv("UPLOAD_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: invalid UPLOAD_MAX_BYTES %q", v)
		}
		cfg.UploadMaxBytes = n
	}
	return nil
}

func applyDefaults(cfg *FileConfig) {
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.UploadMaxBytes == 0 {
		cfg.UploadMaxBytes = defaultUploadMaxBytes
	}
}

func validateConfig(cfg FileConfig) error {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("config: databaseURL is required (set DATABASE_URL, or \"memory\" for local runs)")
	}
	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		return errors.New("config: jwtSecretKey is required (set JWT_SECRET_KEY)")
	}
	if cfg.UploadMaxBytes < 0 {
		return errors.New("config: uploadMaxBytes must be >= 0")
	}
	if _, err := ParsePresignTTL(cfg.ObjectStore.PresignTTL); err != nil {
		return err
	}
	if cfg.ObjectStore.Endpoint != "" && strings.TrimSpace(cfg.ObjectStore.Bucket) == "" {
		return errors.New("config: objectStore.bucket is required when objectStore.endpoint is set")
	}
	return nil
}

// ParsePresignTTL parses the lifetime of the links the image route redirects to.
func ParsePresignTTL(raw string) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return defaultPresignTTL, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid presignTTL duration: %w", err)
	}
	if err := storage.CheckPresignExpiry(dur); err != nil {
		return 0, fmt.Errorf("invalid presignTTL duration: %w", err)
	}
	return dur, nil
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
