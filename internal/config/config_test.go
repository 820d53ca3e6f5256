package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"scms_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PERSISTENCE_TYPE", "")
	t.Setenv("SERVER_MODE", "")
	dir := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: "test-secret"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "file", cfg.Persistence.Type)
	assert.Equal(t, "data/complaints.json", cfg.Persistence.FilePath)
	assert.Equal(t, 5*time.Minute, cfg.Aging.Interval)
	assert.Equal(t, 30*time.Second, cfg.Reminder.FrequentInterval)
	assert.Equal(t, 60*time.Second, cfg.Reminder.NormalInterval)
	assert.Equal(t, 5, cfg.Reminder.FrequentThreshold)
	assert.Equal(t, 3, cfg.Reminder.AlwaysAlertThreshold)
	assert.Equal(t, "permissive", cfg.Lifecycle.TransitionPolicy)
	assert.Equal(t, "sequential", cfg.Complaint.IDStrategy)
	assert.Equal(t, "scms:complaints", cfg.Redis.SnapshotKey)
	assert.Len(t, cfg.Departments, 6)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PERSISTENCE_TYPE", "")
	t.Setenv("SERVER_MODE", "")
	dir := writeConfig(t, `
aging:
  interval: 90s
lifecycle:
  transition_policy: strict
  allow_reopen: true
complaint:
  id_strategy: uuid
departments:
  - {key: academics, name: Academic Affairs, head: Dr. Priya Sharma}
  - {key: student-affairs, name: Student Affairs, head: Prof. Rajesh Kumar}
  - {key: food-services, name: Food Services, head: Dr. Anita Gupta}
  - {key: facilities, name: Central Library and Facilities, head: Ms. Rao, categories: [Facilities]}
  - {key: administration, name: Administration, head: Mrs. Sunita Patel}
  - {key: general, name: General Affairs, head: Dr. Manoj Verma}
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Aging.Interval)
	assert.Equal(t, "strict", cfg.Lifecycle.TransitionPolicy)
	assert.True(t, cfg.Lifecycle.AllowReopen)
	assert.Equal(t, "uuid", cfg.Complaint.IDStrategy)
	require.Len(t, cfg.Departments, 6)
	assert.Equal(t, "Ms. Rao", cfg.Departments[3].Head)
	assert.Equal(t, "Facilities", string(cfg.Departments[3].Categories[0]))
}

func TestLoadConfigRejectsIncompleteDepartments(t *testing.T) {
	t.Setenv("PERSISTENCE_TYPE", "")
	t.Setenv("SERVER_MODE", "")
	dir := writeConfig(t, `
departments:
  - key: library
    name: Central Library
    head: Ms. Rao
`)

	_, err := LoadConfig(dir)
	assert.ErrorContains(t, err, "departments must include")
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PERSISTENCE_TYPE", "database")
	t.Setenv("SERVER_MODE", "")
	dir := writeConfig(t, "server:\n  port: \"8080\"\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "database", cfg.Persistence.Type)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func validConfig() Config {
	return Config{
		Server:      ServerConfig{Mode: "debug"},
		Persistence: PersistenceConfig{Type: "file"},
		Lifecycle:   LifecycleConfig{TransitionPolicy: "permissive"},
		Complaint:   ComplaintConfig{IDStrategy: "sequential"},
		Aging:       AgingConfig{Interval: time.Minute},
		Reminder:    ReminderConfig{FrequentInterval: time.Second, NormalInterval: time.Second},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"short secret in release", func(c *Config) { c.Server.Mode = "release"; c.JWT.Secret = "short" }, "JWT secret is too short"},
		{"long secret in release", func(c *Config) {
			c.Server.Mode = "release"
			c.JWT.Secret = "0123456789abcdef0123456789abcdef"
		}, ""},
		{"unknown persistence", func(c *Config) { c.Persistence.Type = "s3" }, "unsupported persistence type"},
		{"redis persistence without redis", func(c *Config) { c.Persistence.Type = "redis" }, "requires redis.enabled"},
		{"redis persistence", func(c *Config) { c.Persistence.Type = "redis"; c.Redis.Enabled = true }, ""},
		{"unknown policy", func(c *Config) { c.Lifecycle.TransitionPolicy = "lenient" }, "unsupported transition policy"},
		{"unknown id strategy", func(c *Config) { c.Complaint.IDStrategy = "random" }, "unsupported id strategy"},
		{"zero aging interval", func(c *Config) { c.Aging.Interval = 0 }, "aging.interval"},
		{"zero reminder interval", func(c *Config) { c.Reminder.NormalInterval = 0 }, "reminder intervals"},
		{"default departments", func(c *Config) { c.Departments = model.DefaultDepartments() }, ""},
		{"departments without general", func(c *Config) {
			c.Departments = model.DefaultDepartments()[:5]
		}, `departments must include "general"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
