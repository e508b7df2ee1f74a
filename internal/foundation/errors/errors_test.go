package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ClassifiedError
		want string
	}{
		{
			name: "message only",
			err:  ConfigError("missing site.title").Build(),
			want: "config: missing site.title",
		},
		{
			name: "location in fixed order",
			err: StructureError("duplicate page id").
				WithContext("code", "AB12C").
				WithContext("row", 7).
				WithContext("file", "structure.csv").
				Build(),
			want: "structure: duplicate page id [file=structure.csv row=7]",
		},
		{
			name: "cause appended",
			err:  WrapError(fs.ErrPermission, CategoryFileSystem, "write page").WithContext("path", "out/index.html").Build(),
			want: "filesystem: write page [path=out/index.html]: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestClassifiedError_Classification(t *testing.T) {
	tests := []struct {
		name     string
		err      *ClassifiedError
		category ErrorCategory
		fatal    bool
		retry    bool
	}{
		{"config", ConfigError("x").Build(), CategoryConfig, true, false},
		{"structure", StructureError("x").Build(), CategoryStructure, true, false},
		{"content", ContentError("x").Build(), CategoryContent, false, false},
		{"template", TemplateError("x").Build(), CategoryTemplate, true, false},
		{"network", NetworkError("x").Build(), CategoryNetwork, false, true},
		{"storage", StorageError("x").Build(), CategoryStorage, false, true},
		{"user action overrides retry", NetworkError("x").UserAction().Build(), CategoryNetwork, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category())
			assert.Equal(t, tt.fatal, tt.err.IsFatal())
			assert.Equal(t, tt.retry, tt.err.CanRetry())
		})
	}
}

func TestClassifiedError_Chain(t *testing.T) {
	cause := errors.New("no such table")
	inner := WrapError(cause, CategoryStorage, "record build").
		WithContext("build_id", "b-1").
		Build()
	wrapped := fmt.Errorf("persist stage: %w", inner)

	got, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.True(t, HasCategory(wrapped, CategoryStorage))
	assert.False(t, HasCategory(wrapped, CategoryConfig))
	assert.True(t, HasSeverity(wrapped, SeverityError))
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, NewError(CategoryStorage, "record build").Build())
	assert.NotErrorIs(t, wrapped, NewError(CategoryStorage, "open history").Build())

	_, ok = AsClassified(cause)
	assert.False(t, ok)
	assert.False(t, HasCategory(nil, CategoryStorage))
}

func TestErrorBuilder(t *testing.T) {
	err := RenderError("section failed").
		Warning().
		WithContextMap(ErrorContext{"page_id": "AB12C", "directive": "toc"}).
		WithContext("page_id", "ZZ99Z").
		WithCause(errors.New("bad argument")).
		Build()

	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, RetryNever, err.RetryStrategy())
	assert.Equal(t, "section failed", err.Message())
	assert.EqualError(t, err.Cause(), "bad argument")
	assert.Equal(t, ErrorContext{"page_id": "ZZ99Z", "directive": "toc"}, err.Context())
	assert.Equal(t, "page_id=ZZ99Z", err.Location())
}

func TestErrorContext(t *testing.T) {
	var nilCtx ErrorContext
	_, ok := nilCtx.Get("path")
	assert.False(t, ok)

	ctx := nilCtx.Set("path", "content/home.md").Set("row", 3)
	path, ok := ctx.GetString("path")
	assert.True(t, ok)
	assert.Equal(t, "content/home.md", path)

	_, ok = ctx.GetString("row")
	assert.False(t, ok, "non-string values are not returned as strings")

	merged := ctx.Merge(ErrorContext{"row": 4})
	assert.Equal(t, 4, merged["row"])
	assert.Equal(t, 3, ctx["row"], "merge leaves the receiver untouched")
	assert.Equal(t, ctx, ctx.Merge(nil))
	assert.Equal(t, ErrorContext{"a": 1}, nilCtx.Merge(ErrorContext{"a": 1}))
}
