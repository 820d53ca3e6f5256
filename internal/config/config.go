package config

import (
	"fmt"
	"time"

	"scms_backend/internal/model"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Tracing     TracingConfig `mapstructure:"tracing"`
	Redis       RedisConfig
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Log         LogConfig         `mapstructure:"log"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Aging       AgingConfig       `mapstructure:"aging"`
	Reminder    ReminderConfig    `mapstructure:"reminder"`
	Lifecycle   LifecycleConfig   `mapstructure:"lifecycle"`
	Complaint   ComplaintConfig   `mapstructure:"complaint"`
	Departments []model.Department `mapstructure:"departments"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"` // mysql | postgres
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
	ServiceName       string `mapstructure:"service_name"`
}

type RedisConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Host          string
	Port          int
	Password      string
	DB            int
	SnapshotKey   string `mapstructure:"snapshot_key"`
	EventsChannel string `mapstructure:"events_channel"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// PersistenceConfig 快照存储方式 file | database | redis
type PersistenceConfig struct {
	Type     string `mapstructure:"type"`
	FilePath string `mapstructure:"file_path"`
}

type AgingConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type ReminderConfig struct {
	FrequentInterval     time.Duration `mapstructure:"frequent_interval"`
	NormalInterval       time.Duration `mapstructure:"normal_interval"`
	FrequentThreshold    int           `mapstructure:"frequent_threshold"`
	AlwaysAlertThreshold int           `mapstructure:"always_alert_threshold"`
}

type LifecycleConfig struct {
	TransitionPolicy   string `mapstructure:"transition_policy"` // permissive | strict
	AllowReopen        bool   `mapstructure:"allow_reopen"`
	RejectReassignment bool   `mapstructure:"reject_reassignment"`
}

type ComplaintConfig struct {
	IDStrategy string `mapstructure:"id_strategy"` // sequential | uuid
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.snapshot_key", "scms:complaints")
	v.SetDefault("redis.events_channel", "scms:complaint_events")

	v.SetDefault("tracing.service_name", "scms-backend")

	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("persistence.type", "file")
	v.SetDefault("persistence.file_path", "data/complaints.json")

	v.SetDefault("aging.interval", 5*time.Minute)

	v.SetDefault("reminder.frequent_interval", 30*time.Second)
	v.SetDefault("reminder.normal_interval", 60*time.Second)
	v.SetDefault("reminder.frequent_threshold", 5)
	v.SetDefault("reminder.always_alert_threshold", 3)

	v.SetDefault("lifecycle.transition_policy", "permissive")
	v.SetDefault("lifecycle.allow_reopen", false)
	v.SetDefault("lifecycle.reject_reassignment", false)

	v.SetDefault("complaint.id_strategy", "sequential")
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SCMS")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Persistence
	v.BindEnv("persistence.type", "PERSISTENCE_TYPE")
	v.BindEnv("persistence.file_path", "PERSISTENCE_FILE_PATH")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.Departments) == 0 {
		cfg.Departments = model.DefaultDepartments()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	switch c.Persistence.Type {
	case "file", "database", "redis":
	default:
		return fmt.Errorf("unsupported persistence type %q", c.Persistence.Type)
	}
	if c.Persistence.Type == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("persistence type redis requires redis.enabled")
	}

	switch c.Lifecycle.TransitionPolicy {
	case "permissive", "strict":
	default:
		return fmt.Errorf("unsupported transition policy %q", c.Lifecycle.TransitionPolicy)
	}

	switch c.Complaint.IDStrategy {
	case "sequential", "uuid":
	default:
		return fmt.Errorf("unsupported id strategy %q", c.Complaint.IDStrategy)
	}

	if c.Aging.Interval <= 0 {
		return fmt.Errorf("aging.interval must be positive")
	}

	// 为空时使用默认目录
	if len(c.Departments) > 0 {
		known := make(map[model.DepartmentKey]bool, len(c.Departments))
		for _, d := range c.Departments {
			known[d.Key] = true
		}
		for _, key := range model.RoutedDepartments {
			if !known[key] {
				return fmt.Errorf("departments must include %q", key)
			}
		}
	}
	if c.Reminder.FrequentInterval <= 0 || c.Reminder.NormalInterval <= 0 {
		return fmt.Errorf("reminder intervals must be positive")
	}
	return nil
}
