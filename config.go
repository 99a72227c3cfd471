package compatinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the .compatinfo.yaml configuration file.
//
// Every setting can be overridden on the command line.
type Config struct {
	// Reference database settings.
	Database DatabaseConfig `yaml:"database,omitempty"`

	// Report settings for the result printer.
	Report ReportConfig `yaml:"report,omitempty"`

	// path is the file the config was loaded from.
	path string
}

// DatabaseConfig holds reference database settings.
type DatabaseConfig struct {
	// TempDir is the parent of the compatinfo directory. Defaults to the
	// system temp directory.
	TempDir string `yaml:"tempDir,omitempty"`

	// Empty creates the database file without copying the bundled template.
	Empty bool `yaml:"empty,omitempty"`
}

// ReportConfig holds settings for the report command.
type ReportConfig struct {
	Verbose bool   `yaml:"verbose,omitempty"`
	Debug   bool   `yaml:"debug,omitempty"`
	Colors  string `yaml:"colors,omitempty"`

	// Format is one of "printer", "dots", "json" and "live".
	Format string `yaml:"format,omitempty"`

	// LogDir receives ResultPrinter.log when set.
	LogDir string `yaml:"logDir,omitempty"`

	// LogLevel is the lowest level written to the log file.
	LogLevel string `yaml:"logLevel,omitempty"`

	// Notify enables desktop notifications of the run result.
	Notify bool `yaml:"notify,omitempty"`

	Webhook WebhookConfig `yaml:"webhook,omitempty"`

	// MetricsFile receives run metrics in the Prometheus text format.
	MetricsFile string `yaml:"metricsFile,omitempty"`

	// MaxFailures stops the run after that many failures. Zero means no limit.
	MaxFailures int `yaml:"maxFailures,omitempty"`

	// Risky flags passing tests slower than this duration, e.g. "2s".
	Risky string `yaml:"risky,omitempty"`

	SuiteNaming SuiteNamingConfig `yaml:"suiteNaming,omitempty"`
}

// WebhookConfig holds the webhook notification target.
type WebhookConfig struct {
	URL     string            `yaml:"url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// SuiteNamingConfig overrides how reference suite names are shortened.
type SuiteNamingConfig struct {
	Prefix string `yaml:"prefix,omitempty"`
	Marker string `yaml:"marker,omitempty"`
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// ResolveDir makes a relative directory setting relative to the config file.
func (c *Config) ResolveDir(dir string) string {
	if dir == "" || filepath.IsAbs(dir) || c.path == "" {
		return dir
	}

	return filepath.Join(filepath.Dir(c.path), dir)
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var problems []string

	switch strings.ToLower(c.Report.Colors) {
	case "", "never", "auto", "always":
	default:
		problems = append(problems, fmt.Sprintf("report.colors: %q", c.Report.Colors))
	}

	switch c.Report.Format {
	case "", "printer", "dots", "json", "live":
	default:
		problems = append(problems, fmt.Sprintf("report.format: %q", c.Report.Format))
	}

	if c.Report.MaxFailures < 0 {
		problems = append(problems, fmt.Sprintf("report.maxFailures: %d", c.Report.MaxFailures))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, ", "))
	}

	return nil
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".compatinfo.yaml", ".compatinfo.yml", "compatinfo.yaml", "compatinfo.yml"}

// LoadConfig finds and loads the nearest .compatinfo.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.path, err = filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
