package errors

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
)

// Exit codes returned by the sitebuilder binary, by error category.
// Unclassified errors exit with 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryNotFound:   3,
	CategoryStructure:  4,
	CategoryConfig:     7,
	CategoryNetwork:    8,
	CategoryStorage:    8,
	CategoryContent:    11,
	CategoryTemplate:   11,
	CategoryRender:     11,
	CategoryFileSystem: 11,
	CategoryInternal:   10,
}

// CLIErrorAdapter turns a command error into a stderr message and exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter returns an adapter logging through logger, or the
// default logger when nil. Verbose output lists the full error context.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	c, ok := AsClassified(err)
	if !ok {
		return 1
	}
	if code, known := exitCodes[c.Category()]; known {
		return code
	}
	return 1
}

// FormatError renders err for a site author. Internal errors hide their
// details unless verbose.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	switch {
	case !ok:
		return "Error: " + err.Error()
	case a.verbose:
		var b strings.Builder
		b.WriteString(c.Error())
		for k, v := range sortedContext(c.Context()) {
			fmt.Fprintf(&b, "\n  %s: %v", k, v)
		}
		return b.String()
	case c.Category() == CategoryInternal:
		return "Internal error occurred (use -v for details)"
	case c.Location() != "":
		return fmt.Sprintf("Error: %s (%s)", c.Message(), c.Location())
	default:
		return "Error: " + c.Message()
	}
}

// Report logs err when warranted, writes the formatted message to w and
// returns the exit code.
func (a *CLIErrorAdapter) Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	c, classified := AsClassified(err)
	switch {
	case !classified:
		a.logger.Error("Unclassified error", "error", err)
	case a.verbose || c.IsFatal():
		a.log(c)
	}
	fmt.Fprintln(w, a.FormatError(err))
	return a.ExitCodeFor(err)
}

// HandleError reports err on stderr and exits the process. It returns
// normally only for a nil error.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	os.Exit(a.Report(os.Stderr, err))
}

func (a *CLIErrorAdapter) log(c *ClassifiedError) {
	level := slog.LevelError
	switch c.Severity() {
	case SeverityInfo:
		level = slog.LevelInfo
	case SeverityWarning:
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{slog.String("category", string(c.Category()))}
	if c.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	for k, v := range sortedContext(c.Context()) {
		attrs = append(attrs, slog.Any(k, v))
	}
	if cause := c.Cause(); cause != nil {
		attrs = append(attrs, slog.String("cause", cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), level, c.Message(), attrs...)
}

func sortedContext(ctx ErrorContext) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range slices.Sorted(maps.Keys(ctx)) {
			if !yield(k, ctx[k]) {
				return
			}
		}
	}
}
