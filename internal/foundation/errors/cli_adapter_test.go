package errors

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("invalid input").Build(), expected: 2},
		{name: "missing structure table", err: NotFoundError("structure table missing").Build(), expected: 3},
		{name: "structure error", err: StructureError("duplicate code").Build(), expected: 4},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 7},
		{name: "template error", err: TemplateError("base template missing").Build(), expected: 11},
		{name: "wrapped structure error", err: fmt.Errorf("load: %w", StructureError("bad order").Build()), expected: 4},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{
			name:     "internal error hides details",
			err:      InternalError("internal issue").Build(),
			expected: "Internal error occurred (use -v for details)",
		},
		{
			name:     "user facing error shows message",
			err:      ConfigError("bad config").Build(),
			expected: "Error: bad config",
		},
		{
			name:     "location shown",
			err:      ContentError("unreadable page").WithContext("path", "content/a.md").Build(),
			expected: "Error: unreadable page (path=content/a.md)",
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			expected: "Error: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.FormatError(tt.err))
		})
	}
}

func TestCLIErrorAdapter_VerboseIncludesContext(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, slog.Default())
	err := StructureError("duplicate page code").
		WithContext("row", 4).
		WithContext("code", "AB12C").
		Build()

	got := adapter.FormatError(err)
	assert.Contains(t, got, "structure: duplicate page code [row=4]")
	assert.Contains(t, got, "code: AB12C")
	assert.Contains(t, got, "row: 4")
	assert.Less(t, strings.Index(got, "code:"), strings.Index(got, "row:"))
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger)

	code := adapter.Report(&out, StructureError("unknown directive").WithContext("row", 3).Build())
	assert.Equal(t, 4, code)
	assert.Equal(t, "Error: unknown directive (row=3)\n", out.String())
	assert.Contains(t, logs.String(), "category=structure")

	logs.Reset()
	out.Reset()
	code = adapter.Report(&out, NetworkError("broker unreachable").Build())
	assert.Equal(t, 8, code)
	assert.Empty(t, logs.String(), "non-fatal errors are not logged unless verbose")

	assert.Equal(t, 0, adapter.Report(&out, nil))
}
