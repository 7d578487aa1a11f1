package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Promoter  PromoterConfig  `mapstructure:"promoter"`
	Billing   BillingConfig   `mapstructure:"billing"`
	Sweep     SweepConfig     `mapstructure:"sweep"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Requests      int  `mapstructure:"requests"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

type PromoterConfig struct {
	CodeAlphabet       string `mapstructure:"code_alphabet"`
	ReferralCodeLength int    `mapstructure:"referral_code_length"`
	ShareCodeLength    int    `mapstructure:"share_code_length"`
	TrialCodePrefix    string `mapstructure:"trial_code_prefix"`
	TrialCodeLength    int    `mapstructure:"trial_code_length"`
	QuotaTimezone      string `mapstructure:"quota_timezone"`
	ShareBaseURL       string `mapstructure:"share_base_url"`
}

type BillingConfig struct {
	DefaultTrialPlanID string             `mapstructure:"default_trial_plan_id"`
	PlanNames          map[string]string  `mapstructure:"plan_names"`
	PlanPrices         map[string]float64 `mapstructure:"plan_prices"`
}

type SweepConfig struct {
	Spec string `mapstructure:"spec"` // robfig/cron 表达式，默认每 10 分钟
}

// QuotaLocation 配额月份窗口使用的时区，未配置时固定为 UTC（不使用主机本地时区）
func (p PromoterConfig) QuotaLocation() (*time.Location, error) {
	if p.QuotaTimezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(p.QuotaTimezone)
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// 未配置的编码参数退回默认值
	if cfg.Promoter.ReferralCodeLength == 0 {
		cfg.Promoter.ReferralCodeLength = 8
	}
	if cfg.Promoter.ShareCodeLength == 0 {
		cfg.Promoter.ShareCodeLength = 10
	}
	if cfg.Promoter.TrialCodeLength == 0 {
		cfg.Promoter.TrialCodeLength = 7
	}
	if cfg.Promoter.TrialCodePrefix == "" {
		cfg.Promoter.TrialCodePrefix = "T"
	}

	return &cfg, nil
}
