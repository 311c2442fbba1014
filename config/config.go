package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress string `mapstructure:"http_address"`
	RPCAddress  string `mapstructure:"rpc_address"`
}

type GameConfig struct {
	MaxPlayers       int `mapstructure:"max_players"`
	MazeWidth        int `mapstructure:"maze_width"`
	MazeHeight       int `mapstructure:"maze_height"`
	Levels           int `mapstructure:"levels"`
	TimeLimitMinutes int `mapstructure:"time_limit_minutes"`
}

type SessionConfig struct {
	IdleTimeoutSeconds  int `mapstructure:"idle_timeout_seconds"`
	ReapIntervalSeconds int `mapstructure:"reap_interval_seconds"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "gorm" 或 "pq"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// LoadConfig 读取 path 下的 config.yaml。文件缺失时使用默认值，
// 环境变量可覆盖任意字段。
func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("game.max_players", 4)
	viper.SetDefault("game.maze_width", 10)
	viper.SetDefault("game.maze_height", 10)
	viper.SetDefault("game.levels", 1)
	viper.SetDefault("game.time_limit_minutes", 15)
	viper.SetDefault("session.idle_timeout_seconds", 120)
	viper.SetDefault("session.reap_interval_seconds", 30)
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.driver", "gorm")
	viper.SetDefault("database.postgres.host", "localhost")
	viper.SetDefault("database.postgres.port", 5432)

	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
