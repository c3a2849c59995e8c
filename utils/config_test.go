package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewConfig_Defaults(t *testing.T) {
	config, err := NewConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8000", config.Server.Port)
	assert.Equal(t, "sqlite", config.Database.Driver)
	assert.Equal(t, "inpainting.db", config.Database.DSN)
	assert.Equal(t, "uploads", config.Storage.UploadDir)
	assert.Equal(t, "/images", config.Storage.URLPrefix)
	assert.Equal(t, 10, config.Upload.ListLimit)
	assert.Equal(t, ":8000", config.Addr())
	assert.Equal(t, "http://localhost:8000/images/abc_x.png", config.FileURL("abc_x.png"))
}

func TestNewConfig_FromYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
  public_url: "https://example.org/"
  shutdown_timeout: 3s
database:
  driver: SQLite
  dsn: /tmp/pairs.db
storage:
  upload_dir: /srv/uploads
  url_prefix: files/
upload:
  list_limit: 5
  max_list_limit: 50
log:
  level: debug
  format: JSON
`)

	config, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, 3*time.Second, config.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", config.Database.Driver)
	assert.Equal(t, "/tmp/pairs.db", config.Database.DSN)
	assert.Equal(t, "/srv/uploads", config.Storage.UploadDir)
	assert.Equal(t, "/files", config.Storage.URLPrefix)
	assert.Equal(t, 5, config.Upload.ListLimit)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "https://example.org/files/a.png", config.FileURL("a.png"))

	// Keys absent from the file keep their defaults
	assert.Equal(t, int64(32<<20), config.Upload.MaxBytes)
}

func TestNewConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
storage:
  upload_dir: /srv/uploads
`)
	t.Setenv("INPAINT_PORT", "7000")
	t.Setenv("INPAINT_UPLOAD_DIR", "/data/uploads")
	t.Setenv("INPAINT_DB_CONN_MAX_LIFETIME", "1m")

	config, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", config.Server.Port)
	assert.Equal(t, "/data/uploads", config.Storage.UploadDir)
	assert.Equal(t, time.Minute, config.Database.ConnMaxLifetime)
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "database:\n  driver: postgres\n"},
		{"empty dsn", "database:\n  dsn: \"\"\n"},
		{"root url prefix", "storage:\n  url_prefix: /\n"},
		{"list limit above max", "upload:\n  list_limit: 500\n"},
		{"negative max bytes", "upload:\n  max_bytes: -1\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"malformed yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestNewConfig_MissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfigPath_Directory(t *testing.T) {
	err := ValidateConfigPath(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")
}

func TestLoadEnvFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("INPAINT_TEST_FROM_DOTENV=yes\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("INPAINT_TEST_FROM_DOTENV") })

	LoadEnvFiles(path, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "yes", os.Getenv("INPAINT_TEST_FROM_DOTENV"))
}
