package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. AGRIDASH_SERVER_PORT.
const EnvPrefix = "AGRIDASH"

// Config holds application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DataConfig points at the dataset.
type DataConfig struct {
	Dir   string `mapstructure:"dir"`
	File  string `mapstructure:"file"`
	Sheet string `mapstructure:"sheet"`
}

// DashboardConfig holds presentation settings.
type DashboardConfig struct {
	Title        string  `mapstructure:"title"`
	PageTitle    string  `mapstructure:"page_title"`
	TopN         int     `mapstructure:"top_n"`
	MapZoom      float64 `mapstructure:"map_zoom"`
	MapCenterLat float64 `mapstructure:"map_center_lat"`
	MapCenterLon float64 `mapstructure:"map_center_lon"`
	AssetsHost   string  `mapstructure:"assets_host"`
}

// Load reads configuration from an optional config file and the environment.
// DATA_DIR is still honoured for the data directory.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgPath := os.Getenv(EnvPrefix + "_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(".", "data")
	if envDataDir := os.Getenv("DATA_DIR"); envDataDir != "" {
		dataDir = envDataDir
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("data.dir", dataDir)
	v.SetDefault("data.file", "df.csv")
	v.SetDefault("data.sheet", "")

	v.SetDefault("dashboard.title", "European Agriculture Dashboard")
	v.SetDefault("dashboard.page_title", "European Agriculture and Framing")
	v.SetDefault("dashboard.top_n", 10)
	v.SetDefault("dashboard.map_zoom", 1.5)
	v.SetDefault("dashboard.map_center_lat", 55.0)
	v.SetDefault("dashboard.map_center_lon", 10.0)
	v.SetDefault("dashboard.assets_host", "https://go-echarts.github.io/go-echarts-assets/assets/")
}

// Validate rejects settings the dashboard cannot run with.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port must not be empty")
	}
	if c.Data.File == "" {
		return fmt.Errorf("data.file must not be empty")
	}
	if c.Dashboard.TopN <= 0 {
		return fmt.Errorf("dashboard.top_n must be positive, got %d", c.Dashboard.TopN)
	}
	if c.Dashboard.MapZoom <= 0 {
		return fmt.Errorf("dashboard.map_zoom must be positive, got %v", c.Dashboard.MapZoom)
	}
	return nil
}

// DataFilePath returns the full path of the configured dataset.
func (c Config) DataFilePath() string {
	if filepath.IsAbs(c.Data.File) {
		return c.Data.File
	}
	return filepath.Join(c.Data.Dir, c.Data.File)
}
