package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Session SessionConfig
	Log     LogConfig
}

type ServerConfig struct {
	Address         string
	Mode            string // gin mode: debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Driver   string // "postgres" 或 "sqlite"
	DSN      string // sqlite 檔案路徑，或完整的 postgres DSN
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

type SessionConfig struct {
	Secret     string
	CookieName string `mapstructure:"cookie_name"`
	TTL        time.Duration
	Secure     bool
}

type LogConfig struct {
	File       string
	Production bool
}

// Load 讀取 .env、config.yaml 與 STUDYBUD_ 前綴的環境變數
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./pkg/config")

	v.SetEnvPrefix("studybud")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "studybud")
	v.SetDefault("db.port", 5432)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookie_name", "sessionid")
	v.SetDefault("session.ttl", 14*24*time.Hour)
	v.SetDefault("session.secure", false)

	v.SetDefault("log.file", "logs/studybud.log")
	v.SetDefault("log.production", false)
}

// Validate 檢查無法在執行期修正的設定錯誤
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server mode %q", c.Server.Mode)
	}

	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}

	if c.Session.Secret == "" {
		if c.Server.Mode == "release" {
			return errors.New("session.secret is required in release mode")
		}
		c.Session.Secret = "studybud-insecure-dev-secret"
	}

	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}

	return nil
}

// SQLitePath 回傳 sqlite 檔案路徑
func (c DBConfig) SQLitePath() string {
	if c.DSN == "" {
		return "studybud.db"
	}
	return c.DSN
}

// PostgresDSN 組合 postgres 連線字串；已設定 DSN 時直接使用
func (c DBConfig) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port)
}
