package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LogConfig 日志输出配置
type LogConfig struct {
	File   string `yaml:"file"`
	Level  string `yaml:"level"`  // debug / info / warn / error
	Format string `yaml:"format"` // console / json
}

// Config 进程级配置；游戏几何尺寸与默认规则为编译期常量，不在此列
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Log LogConfig `yaml:"log"`

	Postgres struct {
		DSN string `yaml:"dsn"` // 空则不落盘比赛记录
	} `yaml:"postgres"`

	Redis struct {
		Addr     string `yaml:"addr"` // 空则不启用排行榜
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Game struct {
		DefaultRoom string `yaml:"default_room"` // 启动时预创建的房间
	} `yaml:"game"`
}

// LoadConfig 读取 YAML 配置；文件不存在时返回零值配置（全部走默认与环境变量）。
// 环境变量覆盖：PORT、DATABASE_URL、REDIS_ADDR。
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// 无配置文件也可运行
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Postgres.DSN = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if cfg.Game.DefaultRoom == "" {
		cfg.Game.DefaultRoom = DefaultRoomID
	}
	return &cfg, nil
}
