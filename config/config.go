package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env string `toml:"env"`

	Database  DatabaseConfigs `toml:"database"`
	ApiServer ServerConfigs   `toml:"api_server"`
	Auth      AuthConfigs     `toml:"auth"`
	Redis     RedisConfigs    `toml:"redis"`
	Kafka     KafkaConfigs    `toml:"kafka"`
	Points    PointsConfigs   `toml:"points"`
	Badge     BadgeConfigs    `toml:"badge"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`

	MaxLimit     int `toml:"max_limit"`
	DefaultLimit int `toml:"default_limit"`
}

type AuthConfigs struct {
	TokenSecret string       `toml:"token_secret"`
	AccessToken TokenConfigs `toml:"access_token"`
}

type TokenConfigs struct {
	Name       string        `toml:"name"`
	Expiration time.Duration `toml:"expiration"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr              string `toml:"addr"`
	NotificationTopic string `toml:"notification_topic"`
}

type PointsConfigs struct {
	DailyLoginPoints uint64 `toml:"daily_login_points"`
}

type BadgeConfigs struct {
	StreakKeeperLevels []uint64 `toml:"streak_keeper_levels"`
	HighRollerLevels   []uint64 `toml:"high_roller_levels"`
	VeteranLevels      []uint64 `toml:"veteran_levels"`
}

// Load reads the TOML config file pointed to by path (or the CONFIG_PATH
// environment variable when path is empty).
func Load(path string) (Configs, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Configs
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, err
		}
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Configs) {
	if cfg.ApiServer.Port == "" {
		cfg.ApiServer.Port = "8080"
	}

	if cfg.ApiServer.MaxLimit == 0 {
		cfg.ApiServer.MaxLimit = 50
	}

	if cfg.ApiServer.DefaultLimit == 0 {
		cfg.ApiServer.DefaultLimit = 10
	}

	if cfg.Auth.AccessToken.Name == "" {
		cfg.Auth.AccessToken.Name = "access_token"
	}

	if cfg.Auth.AccessToken.Expiration == 0 {
		cfg.Auth.AccessToken.Expiration = 24 * time.Hour
	}

	if cfg.Points.DailyLoginPoints == 0 {
		cfg.Points.DailyLoginPoints = 10
	}

	if cfg.Kafka.NotificationTopic == "" {
		cfg.Kafka.NotificationTopic = "notifications"
	}

	if len(cfg.Badge.StreakKeeperLevels) == 0 {
		cfg.Badge.StreakKeeperLevels = []uint64{3, 7, 30, 100}
	}

	if len(cfg.Badge.HighRollerLevels) == 0 {
		cfg.Badge.HighRollerLevels = []uint64{500, 2000, 10000}
	}

	if len(cfg.Badge.VeteranLevels) == 0 {
		cfg.Badge.VeteranLevels = []uint64{5, 10, 25}
	}
}
