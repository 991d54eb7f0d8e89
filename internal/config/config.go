// =============================================================================
// Payments Engine - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file. Every
// setting has a default, so the engine runs without any configuration file.
//
// CONFIGURATION FILE:
//   input:    CSV reading options and the recognized header shapes
//   output:   report format and destination
//   logging:  log level and encoding
//   reports:  optional rejection log and run summary files
//   metrics:  optional prometheus textfile export
//
// The recognized header shapes are fixed once the configuration is loaded.
// Callers receive copies, never the backing slices.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

var (
	defaultStandardHeader = []string{"type", "client", "tx", "amount"}
	defaultMinimalHeader  = []string{"type", "client", "tx"}
)

// OutputHeader is the column layout of the account report.
var OutputHeader = []string{"client", "available", "held", "total", "locked"}

// Report formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXML  = "xml"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Reports ReportsConfig `yaml:"reports"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// InputConfig controls how transaction files are read.
type InputConfig struct {
	// Format is "csv" or "xlsx". Empty means detect from the file extension.
	Format string `yaml:"format"`

	// Delimiter separates CSV fields.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Sheet is the XLSX worksheet to read. Empty means the first sheet.
	Sheet string `yaml:"sheet"`

	// StandardHeader is the header of four-field rows.
	// Default: type, client, tx, amount
	StandardHeader []string `yaml:"standard_header"`

	// MinimalHeader is the header of three-field rows (no amount column).
	// Default: type, client, tx
	MinimalHeader []string `yaml:"minimal_header"`
}

// OutputConfig controls where and how the account report is written.
type OutputConfig struct {
	// Format is one of "csv", "xlsx" or "xml".
	// Default: "csv"
	Format string `yaml:"format"`

	// Path is the report file. Empty writes CSV and XML reports to stdout.
	Path string `yaml:"path"`

	// Dir is used together with FileNameFormat when Path is empty.
	// XLSX reports need a file, so they fall back to Dir when Path is empty.
	Dir string `yaml:"dir"`

	// FileNameFormat builds report file names inside Dir.
	// Placeholders: {uuid}, {timestamp}, {date}, {time}, {run}, {format}
	// Default: "accounts_{timestamp}_{uuid}"
	FileNameFormat string `yaml:"file_name_format"`

	// SheetName is the worksheet name of XLSX reports.
	// Default: "accounts"
	SheetName string `yaml:"sheet_name"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Encoding is "console" or "json".
	// Default: "console"
	Encoding string `yaml:"encoding"`
}

// ReportsConfig names optional diagnostic files written after a run.
type ReportsConfig struct {
	// RejectionsFile receives every rejected record. Empty disables it.
	RejectionsFile string `yaml:"rejections_file"`

	// SummaryFile receives the run statistics. Empty disables it.
	SummaryFile string `yaml:"summary_file"`
}

// MetricsConfig controls the prometheus textfile export.
type MetricsConfig struct {
	// Textfile is written in the node exporter textfile format. Empty
	// disables the export.
	Textfile string `yaml:"textfile"`

	// Namespace prefixes every metric name.
	// Default: "payments"
	Namespace string `yaml:"namespace"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path. An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset option.
func applyDefaults(cfg *Config) {
	if cfg.Input.Delimiter == "" {
		cfg.Input.Delimiter = ","
	}
	if len(cfg.Input.StandardHeader) == 0 {
		cfg.Input.StandardHeader = append([]string(nil), defaultStandardHeader...)
	}
	if len(cfg.Input.MinimalHeader) == 0 {
		cfg.Input.MinimalHeader = append([]string(nil), defaultMinimalHeader...)
	}
	cfg.Input.Format = strings.ToLower(cfg.Input.Format)

	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatCSV
	}
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	if cfg.Output.FileNameFormat == "" {
		cfg.Output.FileNameFormat = "accounts_{timestamp}_{uuid}"
	}
	if cfg.Output.SheetName == "" {
		cfg.Output.SheetName = "accounts"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Encoding == "" {
		cfg.Logging.Encoding = "console"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "payments"
	}
}

// Validate checks option values and creates the output directory if needed.
func (c *Config) Validate() error {
	switch c.Input.Format {
	case "", FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("unsupported input format %q", c.Input.Format)
	}

	if len([]rune(c.Input.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Input.Delimiter)
	}

	if len(c.Input.StandardHeader) != 4 {
		return fmt.Errorf("standard_header must have 4 columns, got %d", len(c.Input.StandardHeader))
	}
	if len(c.Input.MinimalHeader) != 3 {
		return fmt.Errorf("minimal_header must have 3 columns, got %d", len(c.Input.MinimalHeader))
	}

	switch c.Output.Format {
	case FormatCSV, FormatXLSX, FormatXML:
	default:
		return fmt.Errorf("unsupported output format %q", c.Output.Format)
	}

	switch c.Logging.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log encoding %q", c.Logging.Encoding)
	}

	if c.Output.Dir != "" {
		if err := os.MkdirAll(c.Output.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", c.Output.Dir, err)
		}
	}

	return nil
}

// =============================================================================
// HEADER SHAPES
// =============================================================================

// Headers returns copies of the two recognized input header shapes.
func (c *Config) Headers() (standard, minimal []string) {
	return append([]string(nil), c.Input.StandardHeader...),
		append([]string(nil), c.Input.MinimalHeader...)
}

// InputFormatFor resolves the input format for path, preferring the
// configured format over the file extension.
func (c *Config) InputFormatFor(path string) string {
	if c.Input.Format != "" {
		return c.Input.Format
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	return []rune(c.Input.Delimiter)[0]
}
