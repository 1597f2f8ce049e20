package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name     string
	Env      string
	TestMode bool // 显式开关：request-reset 响应里带回 reset_token（只给测试环境）
	HTTP     HTTP
}

type Log struct {
	Level      string
	JSON       bool
	File       string // 非空则同时写文件并按大小切割
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	AccessSecret      string
	RefreshSecret     string // 为空则复用 AccessSecret
	ResetSecret       string // 为空则复用 AccessSecret
	Issuer            string
	AccessTokenTTLMin int
	RefreshTokenTTLHr int
	ResetTokenTTLMin  int
}

type Redis struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ProfileTTLSec int    `mapstructure:"profile_ttl_sec"` // 用户资料缓存 TTL，默认 1800
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	ConnAttempts       int // 启动时连接重试次数（仅启动，不做请求级重试）
	ConnBackoffSec     int
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Storage struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string // 头像外链前缀，为空则拼 endpoint/bucket
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Redis   Redis   `mapstructure:"redis"`
	SMTP    SMTP    `mapstructure:"smtp"`
	Storage Storage `mapstructure:"storage"`
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("jwt.accesstokenttlmin", 30)
	v.SetDefault("jwt.refreshtokenttlhr", 168) // 7 天
	v.SetDefault("jwt.resettokenttlmin", 15)
	v.SetDefault("redis.profile_ttl_sec", 1800)
	v.SetDefault("db.connattempts", 3)
	v.SetDefault("db.connbackoffsec", 2)

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	if c.JWT.RefreshSecret == "" {
		c.JWT.RefreshSecret = c.JWT.AccessSecret
	}
	if c.JWT.ResetSecret == "" {
		c.JWT.ResetSecret = c.JWT.AccessSecret
	}
	return &c
}
