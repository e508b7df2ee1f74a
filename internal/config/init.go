package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Example returns the configuration written by Init.
func Example() Config {
	prettify := true
	return Config{
		Paths: PathsConfig{
			Content:   "./" + DefaultContentDir,
			Templates: "./" + DefaultTemplatesDir,
			Output:    "./" + DefaultOutputDir,
		},
		Structure:  StructureConfig{File: DefaultStructureFile, Sheet: "site structure"},
		Properties: PropertiesConfig{File: "properties.yaml"},
		Build: BuildConfig{
			DateFormat:      DefaultDateFormat,
			DateSource:      DateSourceFilesystem,
			Prettify:        &prettify,
			Concurrency:     4,
			CopyDirs:        []string{"iframes", "images"},
			BaseStylesheets: []string{"base", "custom_formatting"},
		},
		Markdown: MarkdownConfig{Extensions: []string{}},
		Monitoring: MonitoringConfig{
			Logging: MonitoringLogging{Level: LogLevelInfo, Format: LogFormatText},
			Metrics: MonitoringMetrics{Enabled: false},
		},
		History: HistoryConfig{Enabled: true, Path: DefaultHistoryPath},
		Notify:  NotifyConfig{NATSURL: "${SITEBUILDER_NATS_URL}", Subject: DefaultNotifySubject},
		Daemon:  DaemonConfig{Schedule: DefaultSchedule},
		Preview: PreviewConfig{Port: DefaultPreviewPort, Debounce: DefaultPreviewDebounce},
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}
	example := Example()
	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal example config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.FileSystemError("write config file").WithCause(err).WithContext("path", configPath).Build()
	}
	return nil
}
