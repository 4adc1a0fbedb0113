package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/pelletier/go-toml/v2"
)

// Supported backend drivers.
const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverMemory   = "memory"

	StorageDriverFilesystem = "filesystem"
	StorageDriverMinIO      = "minio"
	StorageDriverGCS        = "gcs"
)

// Duration is a time.Duration read from text such as "90s", "2h" or "7d".
type Duration time.Duration

// ParseDuration accepts time.ParseDuration input plus a whole number of days ("7d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DatabaseConfig holds metadata store settings. Connection fields apply to the postgres driver.
type DatabaseConfig struct {
	Driver          string   `toml:"driver"`
	Host            string   `toml:"host"`
	Port            string   `toml:"port"`
	User            string   `toml:"user"`
	Password        string   `toml:"password"`
	Name            string   `toml:"name"`
	SSLMode         string   `toml:"sslmode"`
	ApplicationName string   `toml:"application_name"`
	ConnectTimeout  Duration `toml:"connect_timeout"`
	MaxOpenConns    int      `toml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
	ConnMaxIdleTime Duration `toml:"conn_max_idle_time"`
	AutoMigrate     bool     `toml:"auto_migrate"`
}

// StorageConfig selects where document files are kept.
type StorageConfig struct {
	Driver string `toml:"driver"`
	// BasePath is the content root for the filesystem driver.
	BasePath      string `toml:"base_path"`
	MaxUploadSize string `toml:"max_upload_size"`
}

// MaxUploadSizeBytes parses MaxUploadSize ("10MB", "512KiB", ...).
func (c StorageConfig) MaxUploadSizeBytes() (int64, error) {
	size, err := units.RAMInBytes(c.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("max_upload_size must be positive")
	}
	return size, nil
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// GCSConfig holds Google Cloud Storage settings.
type GCSConfig struct {
	Bucket          string `toml:"bucket"`
	CredentialsFile string `toml:"credentials_file"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret string   `toml:"jwt_secret"`
	TokenTTL  Duration `toml:"token_ttl"`
}

// PaginationConfig bounds listing page sizes.
type PaginationConfig struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

// CacheConfig tunes the in-process identity cache.
type CacheConfig struct {
	IdentityTTL     Duration `toml:"identity_ttl"`
	CleanupInterval Duration `toml:"cleanup_interval"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level    string `toml:"level"`
	Timezone string `toml:"timezone"`
}

// AppConfig is the centralized configuration struct for the application.
// Values come from defaults, then an optional TOML file (CONFIG_FILE), then environment
// variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string           `toml:"app_host"`
	Port       string           `toml:"port"`
	ClientURL  string           `toml:"client_url"`
	Database   DatabaseConfig   `toml:"database"`
	Storage    StorageConfig    `toml:"storage"`
	MinIO      MinIOConfig      `toml:"minio"`
	GCS        GCSConfig        `toml:"gcs"`
	Auth       AuthConfig       `toml:"auth"`
	Pagination PaginationConfig `toml:"pagination"`
	Cache      CacheConfig      `toml:"cache"`
	Log        LogConfig        `toml:"log"`
}

func defaults() *AppConfig {
	return &AppConfig{
		AppHost:   "localhost:8080",
		Port:      "8080",
		ClientURL: "*",
		Database: DatabaseConfig{
			Driver:          DatabaseDriverPostgres,
			Port:            "5432",
			SSLMode:         "disable",
			ApplicationName: "docvault",
			ConnectTimeout:  Duration(5 * time.Second),
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: Duration(5 * time.Minute),
			ConnMaxIdleTime: Duration(time.Minute),
			AutoMigrate:     true,
		},
		Storage: StorageConfig{
			Driver:        StorageDriverFilesystem,
			BasePath:      "uploads",
			MaxUploadSize: "10MB",
		},
		Auth: AuthConfig{
			TokenTTL: Duration(7 * 24 * time.Hour),
		},
		Pagination: PaginationConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
		},
		Cache: CacheConfig{
			IdentityTTL:     Duration(5 * time.Minute),
			CleanupInterval: Duration(10 * time.Minute),
		},
		Log: LogConfig{
			Level:    "info",
			Timezone: "UTC",
		},
	}
}

// Load reads configuration. A .env file can be auto-loaded by importing:
// _ "github.com/joho/godotenv/autoload". Real environment variables take precedence over
// both the .env file and CONFIG_FILE.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables. Unparsable durations are reported, not ignored.
func (c *AppConfig) applyEnv() error {
	var errs []error
	duration := func(key string, def Duration) Duration {
		d, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	c.AppHost = getEnv("APP_HOST", c.AppHost)
	c.Port = getEnv("PORT", c.Port)
	c.ClientURL = getEnv("CLIENT_URL", c.ClientURL)

	c.Database = DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", c.Database.Driver),
		Host:            getEnv("DB_HOST", c.Database.Host),
		Port:            getEnv("DB_PORT", c.Database.Port),
		User:            getEnv("DB_USER", c.Database.User),
		Password:        getEnv("DB_PASSWORD", c.Database.Password),
		Name:            getEnv("DB_NAME", c.Database.Name),
		SSLMode:         getEnv("DB_SSLMODE", c.Database.SSLMode),
		ApplicationName: getEnv("DB_APPLICATION_NAME", c.Database.ApplicationName),
		ConnectTimeout:  duration("DB_CONNECT_TIMEOUT", c.Database.ConnectTimeout),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns),
		ConnMaxLifetime: duration("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime),
		ConnMaxIdleTime: duration("DB_CONN_MAX_IDLE_TIME", c.Database.ConnMaxIdleTime),
		AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", c.Database.AutoMigrate),
	}

	c.Storage = StorageConfig{
		Driver:        getEnv("STORAGE_DRIVER", c.Storage.Driver),
		BasePath:      getEnv("STORAGE_BASE_PATH", c.Storage.BasePath),
		MaxUploadSize: getEnv("UPLOAD_MAX_SIZE", c.Storage.MaxUploadSize),
	}

	c.MinIO = MinIOConfig{
		Endpoint:  getEnv("MINIO_ENDPOINT", c.MinIO.Endpoint),
		AccessKey: getEnv("MINIO_ACCESS_KEY", c.MinIO.AccessKey),
		SecretKey: getEnv("MINIO_SECRET_KEY", c.MinIO.SecretKey),
		Bucket:    getEnv("MINIO_BUCKET", c.MinIO.Bucket),
		UseSSL:    getEnvBool("MINIO_USE_SSL", c.MinIO.UseSSL),
	}

	c.GCS = GCSConfig{
		Bucket:          getEnv("GCS_BUCKET", c.GCS.Bucket),
		CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", c.GCS.CredentialsFile),
	}

	c.Auth = AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", c.Auth.JWTSecret),
		TokenTTL:  duration("JWT_EXPIRE", c.Auth.TokenTTL),
	}

	c.Pagination = PaginationConfig{
		DefaultLimit: getEnvInt("PAGINATION_DEFAULT_LIMIT", c.Pagination.DefaultLimit),
		MaxLimit:     getEnvInt("PAGINATION_MAX_LIMIT", c.Pagination.MaxLimit),
	}

	c.Cache = CacheConfig{
		IdentityTTL:     duration("CACHE_IDENTITY_TTL", c.Cache.IdentityTTL),
		CleanupInterval: duration("CACHE_CLEANUP_INTERVAL", c.Cache.CleanupInterval),
	}

	c.Log = LogConfig{
		Level:    getEnv("LOG_LEVEL", c.Log.Level),
		Timezone: getEnv("TZ_LOG", c.Log.Timezone),
	}
	return errors.Join(errs...)
}

// Validate checks settings needed to serve requests.
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case DatabaseDriverPostgres, DatabaseDriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case StorageDriverFilesystem:
		if c.Storage.BasePath == "" {
			return fmt.Errorf("storage base_path required")
		}
	case StorageDriverMinIO, StorageDriverGCS:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}

	if _, err := c.Storage.MaxUploadSizeBytes(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.Cache.IdentityTTL < 0 || c.Cache.CleanupInterval < 0 {
		return fmt.Errorf("cache durations must not be negative")
	}
	if c.Pagination.DefaultLimit < 1 || c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return fmt.Errorf("invalid pagination limits: default=%d max=%d", c.Pagination.DefaultLimit, c.Pagination.MaxLimit)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used for log timestamps.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Log.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid log timezone: %w", err)
	}
	return loc, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def Duration) (Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return Duration(d), nil
}
