package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "dhsclean/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Report    ReportConfig    `yaml:"report"`
}

// InputConfig describes the raw survey export.
type InputConfig struct {
	Path       string `yaml:"path" validate:"required"`
	SkipRows   int    `yaml:"skip_rows" split_words:"true" validate:"min=0"`
	Sheet      string `yaml:"sheet"`
	MinColumns int    `yaml:"min_columns" split_words:"true" validate:"min=3"`
}

// OutputConfig describes where the cleaned table is persisted.
type OutputConfig struct {
	CSVPath  string `yaml:"csv_path" split_words:"true" validate:"required"`
	XLSXPath string `yaml:"xlsx_path" split_words:"true"`
	// BOM prefixes the CSV with a UTF-8 byte order mark for Excel.
	BOM bool `yaml:"bom"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" validate:"oneof=json text"`
	Output   string `yaml:"output" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// TelemetryConfig controls stage tracing and the run metrics textfile.
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" split_words:"true" validate:"oneof=none stdout file"`
	TraceFile     string `yaml:"trace_file" split_words:"true" validate:"required_if=TraceExporter file"`
	MetricsFile   string `yaml:"metrics_file" split_words:"true"`
}

// ReportConfig controls the console quality report.
type ReportConfig struct {
	Color      string `yaml:"color" validate:"oneof=auto always never"`
	SampleRows int    `yaml:"sample_rows" split_words:"true" validate:"min=0"`
}

// Load builds the configuration from defaults, the optional YAML file at
// path, an optional .env file and DHS_* environment variables, in that
// order of increasing precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).
				WithContext("path", configFile)
		}
	}

	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, apperrors.NewConfigError("failed to load .env file", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv exports variables from a .env file without overriding ones
// already present in the environment. A missing file is not an error.
func loadDotEnv(filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(filePath)
}

// getConfigFilePath returns the first config file found in the usual locations
func getConfigFilePath() string {
	for _, location := range ConfigFileLocations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return apperrors.NewConfigError("config validation failed", fmt.Errorf("%s", strings.Join(msgs, "; ")))
		}
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:       DefaultRawPath,
			SkipRows:   DefaultSkipRows,
			MinColumns: MinRawColumns,
		},
		Output: OutputConfig{
			CSVPath: DefaultCleanPath,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogPath,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
		Report: ReportConfig{
			Color:      "auto",
			SampleRows: DefaultSampleRows,
		},
	}
}
