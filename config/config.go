package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	DBDriver       string `yaml:"db_driver"`
	DBHost         string `yaml:"db_host"`
	DBPort         string `yaml:"db_port"`
	DBUser         string `yaml:"db_user"`
	DBPassword     string `yaml:"db_password"`
	DBName         string `yaml:"db_name"`
	DBPath         string `yaml:"db_path"`
	DBMaxOpenConns int    `yaml:"db_max_open_conns"`
	DBMaxIdleConns int    `yaml:"db_max_idle_conns"`

	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	SecureCookie  bool   `yaml:"secure_cookie"`

	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
	AdminEmail    string `yaml:"admin_email"`

	UploadDir     string `yaml:"upload_dir"`
	PublicBaseURL string `yaml:"public_base_url"`

	Xendit XenditConfig `yaml:"xendit"`

	TelegramToken       string `yaml:"telegram_token"`
	TelegramAdminChatID int64  `yaml:"telegram_admin_chat_id"`

	RedisAddr          string `yaml:"redis_addr"`
	RedisPassword      string `yaml:"redis_password"`
	RedisDB            int    `yaml:"redis_db"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

type XenditConfig struct {
	SecretKey     string `yaml:"secret_key"`
	CallbackToken string `yaml:"callback_token"`
}

func defaults() *Config {
	return &Config{
		Port:               "8080",
		DBDriver:           "postgres",
		DBPort:             "5432",
		DBPath:             "rifas.db",
		DBMaxOpenConns:     25,
		DBMaxIdleConns:     5,
		TokenTTLHours:      24,
		AdminUsername:      "admin",
		UploadDir:          "./uploads/",
		RateLimitPerMinute: 30,
		LogLevel:           "info",
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named
// by CONFIG_FILE if set, then environment variables.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBPath, "DB_PATH")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.AdminUsername, "ADMIN_USERNAME")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&cfg.Xendit.SecretKey, "XENDIT_SECRET_KEY")
	setString(&cfg.Xendit.CallbackToken, "XENDIT_CALLBACK_TOKEN")
	setString(&cfg.TelegramToken, "TELEGRAM_TOKEN")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFile, "LOG_FILE")

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.DBMaxOpenConns, "DB_MAX_OPEN_CONNS"},
		{&cfg.DBMaxIdleConns, "DB_MAX_IDLE_CONNS"},
		{&cfg.TokenTTLHours, "TOKEN_TTL_HOURS"},
		{&cfg.RedisDB, "REDIS_DB"},
		{&cfg.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE"},
	}
	for _, i := range ints {
		if err := setInt(i.dst, i.key); err != nil {
			return err
		}
	}

	if v := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
		cfg.TelegramAdminChatID = id
	}
	if v := os.Getenv("SECURE_COOKIE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SECURE_COOKIE: %w", err)
		}
		cfg.SecureCookie = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.TokenTTLHours <= 0 {
		return errors.New("TOKEN_TTL_HOURS must be positive")
	}
	return nil
}

// GatewayEnabled reports whether card payments go through Xendit.
func (c *Config) GatewayEnabled() bool {
	return c.Xendit.SecretKey != ""
}
