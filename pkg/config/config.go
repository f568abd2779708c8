// Package config 读取配置文件和 FORTYTWO_* 环境变量
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/play/fortytwo/pkg/fortytwo"
)

const envPrefix = "FORTYTWO"

type Config struct {
	Game    GameConfig
	Redis   RedisConfig
	Lock    LockConfig
	Store   StoreConfig
	Events  EventsConfig
	History HistoryConfig
	Log     LogConfig
}

type GameConfig struct {
	MarksToWin int
	Seed       uint64 // 0 表示随机
	Dealer     string
}

type RedisConfig struct {
	Addr     string // 为空时使用内存存储和进程内锁
	Password string
	DB       int
}

type LockConfig struct {
	TTL        time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

type StoreConfig struct {
	Size      int
	TTL       time.Duration
	KeyPrefix string
}

type EventsConfig struct {
	QueueSize int
	KeyPrefix string
}

type HistoryConfig struct {
	DSN     string // 为空时不归档
	LogSlow time.Duration
}

type LogConfig struct {
	Level  string
	Traced bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.marksToWin", fortytwo.MarksToWin)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.dealer", "north")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("lock.ttl", "3s")
	v.SetDefault("lock.maxRetries", 20)
	v.SetDefault("lock.retryDelay", "50ms")
	v.SetDefault("store.size", 10000)
	v.SetDefault("store.ttl", "168h")
	v.SetDefault("store.keyPrefix", "fortytwo:game:")
	v.SetDefault("events.queueSize", 1000)
	v.SetDefault("events.keyPrefix", "fortytwo:events:")
	v.SetDefault("history.dsn", "")
	v.SetDefault("history.logSlow", "200ms")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.traced", false)
}

// Load 读取配置，path 为空时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Game: GameConfig{
			MarksToWin: v.GetInt("game.marksToWin"),
			Seed:       cast.ToUint64(v.Get("game.seed")),
			Dealer:     v.GetString("game.dealer"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Lock: LockConfig{
			TTL:        v.GetDuration("lock.ttl"),
			MaxRetries: v.GetInt("lock.maxRetries"),
			RetryDelay: v.GetDuration("lock.retryDelay"),
		},
		Store: StoreConfig{
			Size:      v.GetInt("store.size"),
			TTL:       v.GetDuration("store.ttl"),
			KeyPrefix: v.GetString("store.keyPrefix"),
		},
		Events: EventsConfig{
			QueueSize: v.GetInt("events.queueSize"),
			KeyPrefix: v.GetString("events.keyPrefix"),
		},
		History: HistoryConfig{
			DSN:     v.GetString("history.dsn"),
			LogSlow: v.GetDuration("history.logSlow"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Traced: v.GetBool("log.traced"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	if c.Game.MarksToWin <= 0 {
		return fmt.Errorf("game.marksToWin must be positive, got %d", c.Game.MarksToWin)
	}
	if _, err := c.dealer(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Lock.TTL <= 0 {
		return fmt.Errorf("lock.ttl must be positive, got %s", c.Lock.TTL)
	}
	if c.Lock.MaxRetries < 0 {
		return fmt.Errorf("lock.maxRetries must not be negative, got %d", c.Lock.MaxRetries)
	}
	return nil
}

func (c *Config) dealer() (fortytwo.Position, error) {
	var pos fortytwo.Position
	if err := pos.UnmarshalText([]byte(strings.ToLower(c.Game.Dealer))); err != nil {
		return pos, fmt.Errorf("game.dealer: %w", err)
	}
	return pos, nil
}

// Setup 应用日志级别和 SQL 日志开关
func (c *Config) Setup() {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	viper.Set("log.traced", c.Log.Traced)
}

// GameOptions 新游戏的引擎选项
func (c *Config) GameOptions() []fortytwo.Option {
	opts := []fortytwo.Option{fortytwo.WithMarksToWin(c.Game.MarksToWin)}
	if c.Game.Seed != 0 {
		opts = append(opts, fortytwo.WithSeed(c.Game.Seed))
	}
	if dealer, err := c.dealer(); err == nil {
		opts = append(opts, fortytwo.WithDealer(dealer))
	}
	return opts
}
