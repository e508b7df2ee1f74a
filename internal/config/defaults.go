package config

import (
	"fmt"
	"path/filepath"
	"runtime"

	"git.home.luguber.info/inful/sitebuilder/internal/properties"
)

// Default values applied to omitted keys.
const (
	DefaultContentDir      = "content"
	DefaultTemplatesDir    = "templates"
	DefaultOutputDir       = "output"
	DefaultStructureFile   = "structure.xlsx"
	DefaultDateFormat      = "02-01-2006"
	DefaultHistoryPath     = ".sitebuilder/history.db"
	DefaultNotifySubject   = "sitebuilder.builds"
	DefaultSchedule        = "0 * * * *"
	DefaultPreviewPort     = 8080
	DefaultPreviewDebounce = "500ms"
)

// ConfigDefaultApplier applies defaults for one configuration domain.
type ConfigDefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []ConfigDefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []ConfigDefaultApplier{
			&PathsDefaultApplier{},
			&BuildDefaultApplier{},
			&MonitoringDefaultApplier{},
			&ServicesDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// PathsDefaultApplier fills in directory and file locations and anchors
// relative ones at the config's workdir.
type PathsDefaultApplier struct{}

func (p *PathsDefaultApplier) Domain() string { return "paths" }

func (p *PathsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Workdir == "" {
		wd, err := filepath.Abs(".")
		if err != nil {
			return err
		}
		cfg.Workdir = wd
	}
	cfg.Paths.Content = anchor(cfg.Workdir, cfg.Paths.Content, DefaultContentDir)
	cfg.Paths.Templates = anchor(cfg.Workdir, cfg.Paths.Templates, DefaultTemplatesDir)
	cfg.Paths.Output = anchor(cfg.Workdir, cfg.Paths.Output, DefaultOutputDir)
	if cfg.Structure.File == "" {
		cfg.Structure.File = DefaultStructureFile
	}
	if cfg.Properties.File == "" {
		cfg.Properties.File = properties.FileName
	}
	return nil
}

func anchor(workdir, p, fallback string) string {
	if p == "" {
		p = fallback
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(workdir, p)
}

// BuildDefaultApplier handles build configuration defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.DateFormat == "" {
		cfg.Build.DateFormat = DefaultDateFormat
	}
	if cfg.Build.DateSource == "" {
		cfg.Build.DateSource = DateSourceFilesystem
	}
	if cfg.Build.Prettify == nil {
		on := true
		cfg.Build.Prettify = &on
	}
	if cfg.Build.Concurrency == 0 {
		cfg.Build.Concurrency = runtime.NumCPU()
	}
	if cfg.Build.CopyDirs == nil {
		cfg.Build.CopyDirs = []string{"iframes", "images"}
	}
	if cfg.Build.BaseStylesheets == nil {
		cfg.Build.BaseStylesheets = []string{"base", "custom_formatting"}
	}
	return nil
}

// MonitoringDefaultApplier handles logging and metrics defaults.
type MonitoringDefaultApplier struct{}

func (m *MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (m *MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Monitoring.Logging.Level == "" {
		cfg.Monitoring.Logging.Level = LogLevelInfo
	}
	if cfg.Monitoring.Logging.Format == "" {
		cfg.Monitoring.Logging.Format = LogFormatText
	}
	if cfg.Monitoring.Metrics.Textfile != "" && !filepath.IsAbs(cfg.Monitoring.Metrics.Textfile) {
		cfg.Monitoring.Metrics.Textfile = filepath.Join(cfg.Workdir, cfg.Monitoring.Metrics.Textfile)
	}
	return nil
}

// ServicesDefaultApplier handles history, notification, daemon and preview defaults.
type ServicesDefaultApplier struct{}

func (s *ServicesDefaultApplier) Domain() string { return "services" }

func (s *ServicesDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.History.Path = anchor(cfg.Workdir, cfg.History.Path, DefaultHistoryPath)
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.Daemon.Schedule == "" {
		cfg.Daemon.Schedule = DefaultSchedule
	}
	if cfg.Preview.Port == 0 {
		cfg.Preview.Port = DefaultPreviewPort
	}
	if cfg.Preview.Debounce == "" {
		cfg.Preview.Debounce = DefaultPreviewDebounce
	}
	return nil
}
