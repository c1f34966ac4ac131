package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

var config *viper.Viper

type Settings struct {
	Server       ServerSettings      `mapstructure:"server"`
	Database     DatabaseSettings    `mapstructure:"database"`
	Log          LogSettings         `mapstructure:"log"`
	Ingester     IngesterSettings    `mapstructure:"ingester"`
	Lake         LakeSettings        `mapstructure:"lake"`
	Marketplaces MarketplaceSettings `mapstructure:"marketplaces"`
	Metrics      MetricsSettings     `mapstructure:"metrics"`
}

type ServerSettings struct {
	Port         string   `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DatabaseSettings struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type IngesterSettings struct {
	Network          string        `mapstructure:"network"`
	Source           string        `mapstructure:"source"`
	StartBlockHeight uint64        `mapstructure:"start_block_height"`
	EndBlockHeight   uint64        `mapstructure:"end_block_height"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	RetryInterval    time.Duration `mapstructure:"retry_interval"`
	EnableStream     bool          `mapstructure:"enable_stream"`
	FilePath         string        `mapstructure:"file_path"`
}

type LakeSettings struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
}

type MarketplaceSettings struct {
	MintbasePattern string `mapstructure:"mintbase_pattern"`
	ParasReceiver   string `mapstructure:"paras_receiver"`
}

type MetricsSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allow_origins", []string{})
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("ingester.network", "mainnet")
	v.SetDefault("ingester.source", "lake")
	v.SetDefault("ingester.start_block_height", 80504433)
	v.SetDefault("ingester.end_block_height", 0)
	v.SetDefault("ingester.poll_interval", "2s")
	v.SetDefault("ingester.retry_interval", "5s")
	v.SetDefault("ingester.enable_stream", true)
	v.SetDefault("ingester.file_path", "")
	v.SetDefault("lake.bucket", "")
	v.SetDefault("lake.region", "eu-central-1")
	v.SetDefault("marketplaces.mintbase_pattern", "")
	v.SetDefault("marketplaces.paras_receiver", "")
	v.SetDefault("metrics.enabled", true)
}

// Init is an exported method that takes the environment starts the viper
// (external lib) and returns the configuration struct.
func Init(env string) {
	v, err := Load("config/", env)
	if err != nil {
		logrus.Fatalf("error on parsing configuration: %v", err)
	}
	config = v
}

// Load reads default.yaml from dir, merges the file of the given environment on top and
// lets environment variables (DATABASE_URL, INGESTER_SOURCE, ...) override both.
func Load(dir, env string) (*viper.Viper, error) {
	// .env is optional
	_ = gotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetConfigName("default")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error on parsing default configuration file: %w", err)
	}

	// Map environment names to config files
	configName := env
	switch env {
	case "development":
		configName = "testnet"
	case "production":
		configName = "mainnet"
	}

	envConfig := viper.New()
	envConfig.SetConfigType("yaml")
	envConfig.AddConfigPath(dir)
	envConfig.SetConfigName(configName)
	if err := envConfig.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error on parsing %s configuration file: %w", configName, err)
	}
	if err := v.MergeConfigMap(envConfig.AllSettings()); err != nil {
		return nil, fmt.Errorf("error on merging %s configuration: %w", configName, err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	filePath := v.GetString("ingester.file_path")
	relativePath(dir, &filePath)
	v.Set("ingester.file_path", filePath)

	return v, nil
}

// Decode unmarshals v into Settings.
func Decode(v *viper.Viper) (*Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &settings, nil
}

func relativePath(basedir string, path *string) {
	p := *path
	if len(p) > 0 && p[0] != '/' {
		*path = filepath.Join(basedir, p)
	}
}

func GetConfig() *viper.Viper {
	return config
}
