package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Config Configuration of the service, read from YAML and overridden by the environment
type Config struct {
	Server struct {
		Host            string        `yaml:"host" env:"INPAINT_HOST"`
		Port            string        `yaml:"port" env:"INPAINT_PORT"`
		PublicURL       string        `yaml:"public_url" env:"INPAINT_PUBLIC_URL"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"INPAINT_READ_TIMEOUT"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"INPAINT_WRITE_TIMEOUT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"INPAINT_SHUTDOWN_TIMEOUT"`
		Debug           bool          `yaml:"debug" env:"INPAINT_DEBUG"`
	} `yaml:"server"`

	Database struct {
		Driver          string        `yaml:"driver" env:"INPAINT_DB_DRIVER"`
		DSN             string        `yaml:"dsn" env:"INPAINT_DB_DSN"`
		MaxIdleConns    int           `yaml:"max_idle_conns" env:"INPAINT_DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int           `yaml:"max_open_conns" env:"INPAINT_DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"INPAINT_DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Storage struct {
		UploadDir string `yaml:"upload_dir" env:"INPAINT_UPLOAD_DIR"`
		URLPrefix string `yaml:"url_prefix" env:"INPAINT_URL_PREFIX"`
	} `yaml:"storage"`

	Upload struct {
		MaxBytes     int64 `yaml:"max_bytes" env:"INPAINT_UPLOAD_MAX_BYTES"`
		ListLimit    int   `yaml:"list_limit" env:"INPAINT_LIST_LIMIT"`
		MaxListLimit int   `yaml:"max_list_limit" env:"INPAINT_MAX_LIST_LIMIT"`
	} `yaml:"upload"`

	Log struct {
		Level  string `yaml:"level" env:"INPAINT_LOG_LEVEL"`
		Format string `yaml:"format" env:"INPAINT_LOG_FORMAT"`
	} `yaml:"log"`
}

// DefaultConfig Configuration used when no file is given
func DefaultConfig() *Config {
	config := &Config{}

	config.Server.Port = "8000"
	config.Server.PublicURL = "http://localhost:8000"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.ShutdownTimeout = 5 * time.Second

	config.Database.Driver = "sqlite"
	config.Database.DSN = "inpainting.db"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 15
	config.Database.ConnMaxLifetime = 30 * time.Minute

	config.Storage.UploadDir = "uploads"
	config.Storage.URLPrefix = "/images"

	config.Upload.MaxBytes = 32 << 20
	config.Upload.ListLimit = 10
	config.Upload.MaxListLimit = 100

	config.Log.Level = "info"
	config.Log.Format = "text"

	return config
}

// NewConfig Create a new config from the defaults, the YAML file at configPath (if any) and the environment
func NewConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if err := ValidateConfigPath(configPath); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	config.normalize()
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// ValidateConfigPath Make sure the path exists and is a regular file
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a normal file", path)
	}
	return nil
}

// LoadEnvFiles Load .env files from the working directory, if present
func LoadEnvFiles(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Warn(fmt.Sprintf("Failed to load %s: %s", path, err.Error()))
		}
	}
}

func (c *Config) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Server.PublicURL = strings.TrimSuffix(strings.TrimSpace(c.Server.PublicURL), "/")
	c.Storage.URLPrefix = "/" + strings.Trim(strings.TrimSpace(c.Storage.URLPrefix), "/")
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port must be set")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("database.driver %q is not supported (use sqlite or mysql)", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn must be set")
	}
	if strings.TrimSpace(c.Storage.UploadDir) == "" {
		return errors.New("storage.upload_dir must be set")
	}
	if c.Storage.URLPrefix == "/" {
		return errors.New("storage.url_prefix must not be the root path")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload.max_bytes must be positive")
	}
	if c.Upload.MaxListLimit <= 0 {
		return errors.New("upload.max_list_limit must be positive")
	}
	if c.Upload.ListLimit <= 0 || c.Upload.ListLimit > c.Upload.MaxListLimit {
		return fmt.Errorf("upload.list_limit must be between 1 and %d", c.Upload.MaxListLimit)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not supported (use text or json)", c.Log.Format)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Addr Listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// FileURL Public URL under which a stored file is served
func (c *Config) FileURL(filename string) string {
	return c.Server.PublicURL + c.Storage.URLPrefix + "/" + filename
}
