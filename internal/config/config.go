package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Report interval bounds: anything shorter than 15 seconds or longer than
// 31 days is rejected rather than clamped.
const (
	MinReportPeriod = 15 * time.Second
	MaxReportPeriod = 31 * 24 * time.Hour
)

// Config holds all configuration for the metering application.
type Config struct {
	Meter    MeterConfig    `mapstructure:"meter"`
	Sampling SamplingConfig `mapstructure:"sampling"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// MeterConfig selects the compiled-in histogram boundary profile.
type MeterConfig struct {
	NominalVoltage   int `mapstructure:"nominal_voltage"`   // 110 or 230
	NominalFrequency int `mapstructure:"nominal_frequency"` // 50 or 60
}

// SamplingConfig controls the ingestion and reporting cadence.
type SamplingConfig struct {
	SamplePeriod time.Duration `mapstructure:"sample_period"`
	ReportPeriod time.Duration `mapstructure:"report_period"`
	SpoofMeter   bool          `mapstructure:"spoof_meter"` // fabricate samples instead of reading a meter
	Seed         int64         `mapstructure:"seed"`        // simulator seed, 0 = time-seeded
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the optional Prometheus endpoint. An empty
// address disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from the given file, environment variables
// (METERING_ prefix, e.g. METERING_METER_NOMINAL_VOLTAGE), and defaults.
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("METERING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Only a missing file is tolerable; defaults and env cover it.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Meter.NominalVoltage != 110 && c.Meter.NominalVoltage != 230 {
		return fmt.Errorf("nominal voltage %d out of range (want 110 or 230)", c.Meter.NominalVoltage)
	}
	if c.Meter.NominalFrequency != 50 && c.Meter.NominalFrequency != 60 {
		return fmt.Errorf("nominal frequency %d out of range (want 50 or 60)", c.Meter.NominalFrequency)
	}
	if c.Sampling.SamplePeriod <= 0 {
		return fmt.Errorf("sample period %s must be positive", c.Sampling.SamplePeriod)
	}
	if c.Sampling.ReportPeriod < MinReportPeriod || c.Sampling.ReportPeriod > MaxReportPeriod {
		return fmt.Errorf("report period %s out of bounds [%s, %s]",
			c.Sampling.ReportPeriod, MinReportPeriod, MaxReportPeriod)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("meter.nominal_voltage", 230)
	v.SetDefault("meter.nominal_frequency", 50)

	v.SetDefault("sampling.sample_period", "1s")
	v.SetDefault("sampling.report_period", "1h")
	v.SetDefault("sampling.spoof_meter", false)
	v.SetDefault("sampling.seed", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.addr", "")
}
