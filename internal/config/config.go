// Package config loads the service configuration from YAML with
// environment overrides for secrets and deploy-specific endpoints.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aeroshieldgt/enviro-api/internal/alerts"
	"github.com/aeroshieldgt/enviro-api/internal/envdata"
)

type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		DSN          string `yaml:"dsn"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
		Stream        string `yaml:"stream"`
	} `yaml:"nats"`

	Pipeline struct {
		Topic           string        `yaml:"topic"`
		Interval        time.Duration `yaml:"interval"`
		DispatchTimeout time.Duration `yaml:"dispatch_timeout"`
		DedupMaxKeys    int           `yaml:"dedup_max_keys"`
		DedupTTL        time.Duration `yaml:"dedup_ttl"`
	} `yaml:"pipeline"`

	Location envdata.Location `yaml:"location"`

	Thresholds alerts.Thresholds `yaml:"thresholds"`

	Upstreams struct {
		USGSFeedURL     string        `yaml:"usgs_feed_url"`
		EONETURL        string        `yaml:"eonet_url"`
		EONETDays       int           `yaml:"eonet_days"`
		MeteomaticsURL  string        `yaml:"meteomatics_url"`
		MeteomaticsUser string        `yaml:"meteomatics_user"`
		MeteomaticsPass string        `yaml:"meteomatics_pass"`
		OpenAQURL       string        `yaml:"openaq_url"`
		PowerURL        string        `yaml:"power_url"`
		Timeout         time.Duration `yaml:"timeout"`
	} `yaml:"upstreams"`

	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	RateLimit struct {
		Rate   int           `yaml:"rate"`
		Window time.Duration `yaml:"window"`
		Salt   string        `yaml:"salt"`
	} `yaml:"ratelimit"`
}

// Load reads the YAML file, fills defaults, then applies environment
// overrides. Env wins over file; secrets should never live in the file.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.Thresholds == (alerts.Thresholds{}) {
		cfg.Thresholds = alerts.DefaultThresholds()
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ShutdownTimeout = 15 * time.Second
	cfg.Database.MaxOpenConns = 25
	cfg.Database.MaxIdleConns = 25
	cfg.Redis.Addr = "localhost:6379"
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.NATS.SubjectPrefix = "push"
	cfg.NATS.Stream = "PUSH"
	cfg.Pipeline.Topic = "alerts-guatemala"
	cfg.Pipeline.Interval = 5 * time.Minute
	cfg.Pipeline.DispatchTimeout = 10 * time.Second
	cfg.Pipeline.DedupMaxKeys = 1000
	cfg.Pipeline.DedupTTL = time.Hour
	cfg.Location = envdata.Location{Name: "Guatemala", Latitude: 14.6349, Longitude: -90.5069}
	cfg.Thresholds = alerts.DefaultThresholds()
	cfg.Upstreams.EONETDays = 14
	cfg.Upstreams.Timeout = 15 * time.Second
	cfg.Cache.TTL = 5 * time.Minute
	cfg.Auth.TokenTTL = 24 * time.Hour
	cfg.RateLimit.Rate = 120
	cfg.RateLimit.Window = time.Minute
	return cfg
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "SERVER_ADDR")
	setString(&cfg.Database.DSN, "DATABASE_DSN")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Upstreams.MeteomaticsUser, "METEOMATICS_USERNAME")
	setString(&cfg.Upstreams.MeteomaticsPass, "METEOMATICS_PASSWORD")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.RateLimit.Salt, "RATELIMIT_SALT")

	if v := os.Getenv("PIPELINE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Pipeline.Interval = d
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
