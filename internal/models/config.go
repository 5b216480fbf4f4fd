package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// CommuteConfig describes one leg of the daily commute. Window bounds are
// normalized route progress; samples whose progress falls strictly inside
// the window have their time step scaled by Multiplier.
type CommuteConfig struct {
	Duration    time.Duration `mapstructure:"duration"`
	Points      int           `mapstructure:"points"`
	WindowStart float64       `mapstructure:"window_start"`
	WindowEnd   float64       `mapstructure:"window_end"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Config struct {
	Seed           int       `mapstructure:"seed"`
	StartDate      time.Time `mapstructure:"start_date"`
	NumDrivers     int       `mapstructure:"num_drivers"`
	SimulationDays int       `mapstructure:"simulation_days"`

	// City layout: every driver gets a home jittered around HomeBase and a
	// workplace jittered around WorkBase, fixed for the whole simulation.
	HomeBase   Location `mapstructure:"home_base"`
	HomeJitter float64  `mapstructure:"home_jitter"`
	WorkBase   Location `mapstructure:"work_base"`
	WorkJitter float64  `mapstructure:"work_jitter"`

	MorningStartHour int           `mapstructure:"morning_start_hour"`
	MorningCommute   CommuteConfig `mapstructure:"morning_commute"`
	EveningCommute   CommuteConfig `mapstructure:"evening_commute"`
	WorkdayHours     int           `mapstructure:"workday_hours"`
	WorkdayInterval  time.Duration `mapstructure:"workday_interval"`
	WorkdayJitter    float64       `mapstructure:"workday_jitter"`
	RouteNoise       float64       `mapstructure:"route_noise"`

	GridSize     int     `mapstructure:"grid_size"`
	HotspotRatio float64 `mapstructure:"hotspot_ratio"`

	KafkaEnabled    bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`
	KafkaTopic      string `mapstructure:"kafka_topic"`

	OutputFormat      string `mapstructure:"output_format"`
	OutputPath        string `mapstructure:"output_path"`
	OutputFolder      string `mapstructure:"output_folder"`
	OutputDestination string `mapstructure:"output_destination"`

	Database     DatabaseConfig     `mapstructure:"database"`
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
	Server       ServerConfig       `mapstructure:"server"`
}

func setDefaults() {
	viper.SetDefault("seed", 42)
	viper.SetDefault("start_date", "2024-01-01T00:00:00Z")
	viper.SetDefault("num_drivers", 100)
	viper.SetDefault("simulation_days", 1)

	viper.SetDefault("home_base.lat", 40.7128)
	viper.SetDefault("home_base.lon", -74.0060)
	viper.SetDefault("home_jitter", 0.05)
	viper.SetDefault("work_base.lat", 40.7589)
	viper.SetDefault("work_base.lon", -73.9851)
	viper.SetDefault("work_jitter", 0.02)

	viper.SetDefault("morning_start_hour", 7)
	viper.SetDefault("morning_commute.duration", "2h")
	viper.SetDefault("morning_commute.points", 20)
	viper.SetDefault("morning_commute.window_start", 0.3)
	viper.SetDefault("morning_commute.window_end", 0.7)
	viper.SetDefault("morning_commute.multiplier", 1.5)
	viper.SetDefault("evening_commute.duration", "2h")
	viper.SetDefault("evening_commute.points", 20)
	viper.SetDefault("evening_commute.window_start", 0.2)
	viper.SetDefault("evening_commute.window_end", 0.8)
	viper.SetDefault("evening_commute.multiplier", 1.3)
	viper.SetDefault("workday_hours", 8)
	viper.SetDefault("workday_interval", "15m")
	viper.SetDefault("workday_jitter", 0.005)
	viper.SetDefault("route_noise", 0.001)

	viper.SetDefault("grid_size", 10)
	viper.SetDefault("hotspot_ratio", 0.7)

	viper.SetDefault("kafka_broker_list", "localhost:9092")
	viper.SetDefault("kafka_topic", "gps_trace_events")
	viper.SetDefault("output_format", "json")
	viper.SetDefault("output_destination", "local")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.shutdown_timeout", "10s")
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Missing config file is fine, defaults and flags cover everything.
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects parameter combinations the simulator cannot run with.
func (cfg *Config) Validate() error {
	if cfg.NumDrivers <= 0 {
		return fmt.Errorf("num_drivers must be positive, got %d", cfg.NumDrivers)
	}
	if cfg.SimulationDays <= 0 {
		return fmt.Errorf("simulation_days must be positive, got %d", cfg.SimulationDays)
	}
	if cfg.MorningCommute.Points < 1 || cfg.EveningCommute.Points < 1 {
		return fmt.Errorf("commute segments need at least one point")
	}
	if cfg.WorkdayHours <= 0 {
		return fmt.Errorf("workday_hours must be positive, got %d", cfg.WorkdayHours)
	}
	if cfg.WorkdayInterval <= 0 {
		return fmt.Errorf("workday_interval must be positive, got %s", cfg.WorkdayInterval)
	}
	if cfg.GridSize < 1 {
		return fmt.Errorf("grid_size must be positive, got %d", cfg.GridSize)
	}
	if cfg.HotspotRatio <= 0 || cfg.HotspotRatio > 1 {
		return fmt.Errorf("hotspot_ratio must be in (0, 1], got %f", cfg.HotspotRatio)
	}
	return nil
}
