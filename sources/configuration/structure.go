package configuration

import (
	"time"
)

type Config struct {
	Service      ServiceConfig      `yaml:"service"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	Redis        RedisConfig        `yaml:"redis"`
	Backend      BackendConfig      `yaml:"backend"`
	Webhook      WebhookConfig      `yaml:"webhook"`
	Broadcast    BroadcastConfig    `yaml:"broadcast"`
	Throttler    ThrottlerConfig    `yaml:"throttler"`
	Features     FeaturesConfig     `yaml:"features"`
	Localization LocalizationConfig `yaml:"localization"`
	Proxy        ProxyConfig        `yaml:"proxy"`
}

type ServiceConfig struct {
	MetricsPort int `yaml:"metrics_port"`
}

type TelegramConfig struct {
	BotToken       string   `yaml:"bot_token"`
	APIEndpoint    string   `yaml:"api_endpoint"`
	PollerTimeout  int      `yaml:"poller_timeout"`
	AllowedUpdates []string `yaml:"allowed_updates"`
	ChunkSize      int      `yaml:"chunk_size"`
	AdminIDs       []int64  `yaml:"admin_ids"`
	SupportLink    string   `yaml:"support_link"`
	OffersDir      string   `yaml:"offers_dir"`
}

type RedisConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	KeyPrefix   string        `yaml:"key_prefix"`
}

type BackendConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Token          string        `yaml:"token"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
}

type WebhookConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	NotifyPath    string `yaml:"notify_path"`
	InternalToken string `yaml:"internal_token"`
}

type BroadcastConfig struct {
	BatchSize   int `yaml:"batch_size"`
	DeliveryRPS int `yaml:"delivery_rps"`
}

type ThrottlerConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
}

type FeaturesConfig struct {
	UnleashAPIURL     string `yaml:"unleash_api_url"`
	UnleashAppName    string `yaml:"unleash_app_name"`
	UnleashInstanceID string `yaml:"unleash_instance_id"`
	RefreshInterval   int    `yaml:"refresh_interval"`
}

type LocalizationConfig struct {
	SupportedLanguages []string `yaml:"supported_languages"`
	DefaultLanguage    string   `yaml:"default_language"`
}

type ProxyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}
