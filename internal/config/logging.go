package config

import (
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelEnum = normalization.NewEnum("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps raw input to a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelEnum.Lookup(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatEnum = normalization.NewEnum("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat maps raw input to a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormatEnum.Lookup(raw)
}

// DateSource selects where page creation and modification dates come from.
type DateSource string

const (
	// DateSourceFilesystem uses file timestamps.
	DateSourceFilesystem DateSource = "filesystem"
	// DateSourceGit uses the first and last commit touching the file.
	DateSourceGit DateSource = "git"
)

var dateSourceEnum = normalization.NewEnum("date source", map[string]DateSource{
	"filesystem": DateSourceFilesystem,
	"fs":         DateSourceFilesystem,
	"git":        DateSourceGit,
}, DateSourceFilesystem)

// NormalizeDateSource maps raw input to a DateSource, defaulting to filesystem.
func NormalizeDateSource(raw string) DateSource {
	return dateSourceEnum.Lookup(raw)
}
