package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App         App         `mapstructure:"app"`
	Log         Logger      `mapstructure:"logger"`
	DB          Database    `mapstructure:"database"`
	API         API         `mapstructure:"api"`
	Scheduler   Scheduler   `mapstructure:"scheduler"`
	Cache       Cache       `mapstructure:"cache"`
	MediaServer MediaServer `mapstructure:"media_server"`
	Tvdb        Tvdb        `mapstructure:"tvdb"`
	Github      Github      `mapstructure:"github"`
	Redis       Redis       `mapstructure:"redis"`
}

type App struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	DownloadDir string `mapstructure:"download_dir"`
}

type Logger struct {
	Level           string        `mapstructure:"level"`
	Encoding        string        `mapstructure:"encoding"`
	AlertWebhookURL string        `mapstructure:"alert_webhook_url"`
	AlertTimeout    time.Duration `mapstructure:"alert_timeout"`
}

type Database struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type Scheduler struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// JobTimeout of zero lets an execution run until it returns.
	JobTimeout     time.Duration `mapstructure:"job_timeout"`
	EventBuffer    int           `mapstructure:"event_buffer"`
	StopTimeout    time.Duration `mapstructure:"stop_timeout"`
	HistoryLimit   int           `mapstructure:"history_limit"`
	DisableStartup bool          `mapstructure:"disable_startup"`
}

type API struct {
	Port            int           `mapstructure:"port"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
	RateLimitExpire time.Duration `mapstructure:"rate_limit_expire"`
}

type Cache struct {
	DefaultExpiration   time.Duration `mapstructure:"default_expiration"`
	CleanupInterval     time.Duration `mapstructure:"cleanup_interval"`
	SysParamExpDuration time.Duration `mapstructure:"sys_param_exp_duration"`
}

type MediaServer struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerSecond int           `mapstructure:"max_request_per_second"`
	BreakerMaxFailures  uint32        `mapstructure:"breaker_max_failures"`
	BreakerTimeout      time.Duration `mapstructure:"breaker_timeout"`
	ClientName          string        `mapstructure:"client_name"`
	DeviceID            string        `mapstructure:"device_id"`
}

type Tvdb struct {
	BaseURL          string        `mapstructure:"base_url"`
	ApiKey           string        `mapstructure:"api_key"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRequestPerMin int           `mapstructure:"max_request_per_min"`
}

type Github struct {
	BaseURL string        `mapstructure:"base_url"`
	Repo    string        `mapstructure:"repo"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Redis struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mediastat")
	v.SetDefault("app.version", "0.0.0")
	v.SetDefault("app.download_dir", "updates")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.alert_timeout", 5*time.Second)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "mediastat.db")
	v.SetDefault("api.port", 6555)
	v.SetDefault("api.rate_limit", 10)
	v.SetDefault("api.rate_limit_burst", 30)
	v.SetDefault("api.rate_limit_expire", 3*time.Minute)
	v.SetDefault("scheduler.poll_interval", 30*time.Second)
	v.SetDefault("scheduler.event_buffer", 64)
	v.SetDefault("scheduler.stop_timeout", 30*time.Second)
	v.SetDefault("scheduler.history_limit", 20)
	v.SetDefault("cache.default_expiration", 10*time.Minute)
	v.SetDefault("cache.cleanup_interval", 15*time.Minute)
	v.SetDefault("cache.sys_param_exp_duration", 5*time.Minute)
	v.SetDefault("media_server.timeout", 30*time.Second)
	v.SetDefault("media_server.max_request_per_second", 20)
	v.SetDefault("media_server.breaker_max_failures", 5)
	v.SetDefault("media_server.breaker_timeout", 60*time.Second)
	v.SetDefault("media_server.client_name", "mediastat")
	v.SetDefault("media_server.device_id", "mediastat-server")
	v.SetDefault("tvdb.base_url", "https://api.thetvdb.com")
	v.SetDefault("tvdb.timeout", 30*time.Second)
	v.SetDefault("tvdb.max_request_per_min", 120)
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.repo", "mediastat/mediastat")
	v.SetDefault("github.timeout", 30*time.Second)
	v.SetDefault("redis.prefix", "mediastat:lock:")
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
