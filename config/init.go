package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Конечная структура конфигурации приложения.
type Config struct {
	Server struct {
		Address  string `mapstructure:"address"`   // 0.0.0.0
		HTTPPort string `mapstructure:"http_port"` // 8000
	} `mapstructure:"server"`

	Logging struct {
		Level  string `mapstructure:"level"`  // trace|debug|info|warning|error|fatal
		Format string `mapstructure:"format"` // text|json
		File   string `mapstructure:"file"`   // путь/префикс файла, пусто — только stdout
	} `mapstructure:"logs"`

	Database struct {
		Driver string `mapstructure:"driver"` // "postgres" | "mysql" | "sqlite"
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Storage struct {
		Dir         string `mapstructure:"dir"`           // плоский каталог артефактов
		MaxUploadMB int64  `mapstructure:"max_upload_mb"` // лимит загрузки фото
	} `mapstructure:"storage"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	SMTP struct {
		Host      string        `mapstructure:"host"`
		Port      int           `mapstructure:"port"`
		Username  string        `mapstructure:"username"`
		Password  string        `mapstructure:"password"`
		FromEmail string        `mapstructure:"from_email"`
		FromName  string        `mapstructure:"from_name"`
		Timeout   time.Duration `mapstructure:"timeout"` // на одно соединение с релеем
	} `mapstructure:"smtp"`

	// общий срок на рендер и рассылку внутри одного запроса
	Notify struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"notify"`
}

// Load читает конфиг из .env/env/файла с дефолтами.
func Load() (*Config, error) {
	// .env — опционально, переменные окружения имеют приоритет
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("dotenv load error: %w", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8000")

	v.SetDefault("logs.level", "info")
	v.SetDefault("logs.format", "text")
	v.SetDefault("logs.file", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "chantierplus.db")

	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.max_upload_mb", 10)

	v.SetDefault("auth.jwt_secret", "CHANGE_ME")
	v.SetDefault("auth.token_ttl", 168*time.Hour)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from_email", "")
	v.SetDefault("smtp.from_name", "ChantierPlus")
	v.SetDefault("smtp.timeout", 20*time.Second)
	v.SetDefault("notify.timeout", 90*time.Second)

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "chantierplus"))
		}
		v.AddConfigPath("/etc/chantierplus")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// MaxUploadBytes — лимит загрузки в байтах.
func (c *Config) MaxUploadBytes() int64 { return c.Storage.MaxUploadMB << 20 }

// WriteTimeout HTTP-сервера: рассылка укладывается в notify.timeout, плюс запас на ответ.
func (c *Config) WriteTimeout() time.Duration { return c.Notify.Timeout + 30*time.Second }

func validate(c *Config) error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" || c.Auth.JWTSecret == "CHANGE_ME" {
		return errors.New("auth.jwt_secret must be set (not empty and not CHANGE_ME)")
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("server.address must not be empty")
	}
	if strings.TrimSpace(c.Server.HTTPPort) == "" {
		return errors.New("server.http_port must not be empty")
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		return errors.New("storage.dir must not be empty")
	}
	if c.Storage.MaxUploadMB <= 0 {
		return errors.New("storage.max_upload_mb must be positive")
	}
	if c.Notify.Timeout <= 0 {
		return errors.New("notify.timeout must be positive")
	}
	if c.SMTP.Timeout <= 0 || c.SMTP.Timeout > c.Notify.Timeout {
		return errors.New("smtp.timeout must be positive and not exceed notify.timeout")
	}
	if c.SMTP.Host != "" && c.SMTP.FromEmail == "" {
		return errors.New("smtp.from_email must be set when smtp.host is configured")
	}
	return nil
}
