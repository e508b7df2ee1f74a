// Package config loads sitebuilder.yaml: where content, templates and output
// live, how the build behaves, and which optional services it talks to.
package config

import (
	derrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "sitebuilder.yaml"

// Config is the complete configuration.
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Structure  StructureConfig  `yaml:"structure"`
	Properties PropertiesConfig `yaml:"properties"`
	Build      BuildConfig      `yaml:"build"`
	Markdown   MarkdownConfig   `yaml:"markdown"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	History    HistoryConfig    `yaml:"history"`
	Notify     NotifyConfig     `yaml:"notify"`
	Daemon     DaemonConfig     `yaml:"daemon"`
	Preview    PreviewConfig    `yaml:"preview"`

	// Workdir anchors relative paths; it is the directory of the loaded file.
	Workdir string `yaml:"-"`
}

// PathsConfig locates the three site directories.
type PathsConfig struct {
	Content   string `yaml:"content"`
	Templates string `yaml:"templates"`
	Output    string `yaml:"output"`
}

// StructureConfig locates the structure table, relative to the content directory.
type StructureConfig struct {
	File  string `yaml:"file"`
	Sheet string `yaml:"sheet,omitempty"`
	// Strict turns structure warnings (duplicate codes, order ties) into errors.
	Strict bool `yaml:"strict"`
}

// PropertiesConfig locates the site properties file, relative to the content directory.
type PropertiesConfig struct {
	File string `yaml:"file"`
}

// BuildConfig controls page generation.
type BuildConfig struct {
	DateFormat      string     `yaml:"date_format"`      // Go time layout for page dates
	DateSource      DateSource `yaml:"date_source"`      // filesystem|git
	Prettify        *bool      `yaml:"prettify"`         // nil means true
	Compress        bool       `yaml:"compress"`         // write .br next to every page
	VerifyLinks     bool       `yaml:"verify_links"`     // check internal links after writing
	TrimStylesheets bool       `yaml:"trim_stylesheets"` // copy only stylesheets pages use
	Concurrency     int        `yaml:"concurrency"`      // page assembly workers
	CopyDirs        []string   `yaml:"copy_dirs"`        // content subdirectories copied verbatim
	BaseStylesheets []string   `yaml:"base_stylesheets"` // concatenated into css/styles_base.css
}

// PrettifyEnabled reports whether pages are pretty-printed.
func (b BuildConfig) PrettifyEnabled() bool {
	return b.Prettify == nil || *b.Prettify
}

// MarkdownConfig selects goldmark extensions.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
}

// MonitoringConfig covers logs and metrics.
type MonitoringConfig struct {
	Logging MonitoringLogging `yaml:"logging"`
	Metrics MonitoringMetrics `yaml:"metrics"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool `yaml:"enabled"`
	// Textfile receives the metrics of each build in Prometheus text format.
	Textfile string `yaml:"textfile,omitempty"`
}

// HistoryConfig controls the build history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// NotifyConfig publishes a message after every build when NATSURL is set.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject"`
}

// DaemonConfig schedules rebuilds.
type DaemonConfig struct {
	Schedule string `yaml:"schedule"` // cron expression
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Port     int    `yaml:"port"`
	Debounce string `yaml:"debounce"`
}

// DebounceInterval is the parsed Debounce value, falling back to the
// default when it is empty or invalid.
func (p PreviewConfig) DebounceInterval() time.Duration {
	if d, err := time.ParseDuration(p.Debounce); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultPreviewDebounce)
	return d
}

// Load reads, normalizes, defaults and validates a configuration file.
// Environment variables from .env files next to it are loaded first and
// ${VAR} references in the file are expanded.
func Load(configPath string) (*Config, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "resolve config path").Build()
	}
	workdir := filepath.Dir(abs)
	loadEnvFiles(workdir)

	data, err := os.ReadFile(abs)
	if derrors.Is(err, fs.ErrNotExist) {
		return nil, errors.ConfigError("configuration file not found (run 'sitebuilder init')").
			WithContext("path", configPath).
			Build()
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read config file").
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))), workdir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "load config").
			WithContext("path", configPath).
			Fatal().
			Build()
	}
	return cfg, nil
}

// Parse decodes YAML and runs normalization, defaults and validation.
func Parse(data []byte, workdir string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "unmarshal config").Build()
	}
	cfg.Workdir = workdir
	return finish(&cfg)
}

// Default returns the configuration used when every key is left out.
func Default(workdir string) (*Config, error) {
	return finish(&Config{Workdir: workdir})
}

func finish(cfg *Config) (*Config, error) {
	res := NormalizeConfig(cfg)
	for _, w := range res.Warnings {
		slog.Warn("config normalization", "warning", w)
	}
	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "configuration validation failed").Build()
	}
	return cfg, nil
}

// StructurePath is the absolute path of the structure table.
func (c *Config) StructurePath() string {
	return c.inContent(c.Structure.File)
}

// PropertiesPath is the absolute path of the site properties file.
func (c *Config) PropertiesPath() string {
	return c.inContent(c.Properties.File)
}

func (c *Config) inContent(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Content, p)
}
