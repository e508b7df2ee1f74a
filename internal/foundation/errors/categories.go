package errors

import "maps"

// ErrorCategory routes an error to an exit code and tells the author which
// input to look at.
type ErrorCategory string

// Input categories.
const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryStructure  ErrorCategory = "structure" // ordering, hrefs and ids in the structure table
)

// Build categories.
const (
	CategoryContent  ErrorCategory = "content"
	CategoryTemplate ErrorCategory = "template"
	CategoryRender   ErrorCategory = "render"
)

// Environment categories.
const (
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryNetwork    ErrorCategory = "network"
	CategoryStorage    ErrorCategory = "storage"
	CategoryInternal   ErrorCategory = "internal"
)

type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // the build stops
	SeverityError   ErrorSeverity = "error"   // the current page or stage fails
	SeverityWarning ErrorSeverity = "warning" // output is degraded
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy says whether repeating an operation can help.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryImmediate  RetryStrategy = "immediate"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext holds the structured fields attached to an error.
type ErrorContext map[string]any

// Set stores value under key, allocating the map when c is nil.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = ErrorContext{}
	}
	c[key] = value
	return c
}

func (c ErrorContext) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// GetString returns the value under key when it is a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// Merge returns a new context with other's values taking precedence. An
// empty other returns c unchanged.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	switch {
	case len(other) == 0:
		return c
	case len(c) == 0:
		return maps.Clone(other)
	}
	out := maps.Clone(c)
	maps.Copy(out, other)
	return out
}
