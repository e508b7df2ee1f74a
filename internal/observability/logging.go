package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Scope is the build position a log line was emitted from. Every helper in
// this package prefixes its attributes with the non-empty scope fields.
type Scope struct {
	BuildID string
	Stage   string
	PageID  string
	Href    string
}

type scopeKey struct{}

// ScopeFrom returns the scope carried by ctx, or the zero Scope.
func ScopeFrom(ctx context.Context) Scope {
	s, _ := ctx.Value(scopeKey{}).(Scope)
	return s
}

func withScope(ctx context.Context, edit func(*Scope)) context.Context {
	s := ScopeFrom(ctx)
	edit(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithBuildID starts the scope of one build.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	return withScope(ctx, func(s *Scope) { s.BuildID = buildID })
}

func WithStage(ctx context.Context, stage string) context.Context {
	return withScope(ctx, func(s *Scope) { s.Stage = stage })
}

// WithPage narrows the scope to the page being assembled.
func WithPage(ctx context.Context, pageID, href string) context.Context {
	return withScope(ctx, func(s *Scope) {
		s.PageID = pageID
		s.Href = href
	})
}

// Attrs returns the non-empty scope fields as log attributes.
func (s Scope) Attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 4)
	for _, f := range []struct {
		v    string
		attr func(string) slog.Attr
	}{
		{s.BuildID, logfields.BuildID},
		{s.Stage, logfields.Stage},
		{s.PageID, logfields.PageID},
		{s.Href, logfields.Href},
	} {
		if f.v != "" {
			attrs = append(attrs, f.attr(f.v))
		}
	}
	return attrs
}

// Log writes msg at level through the default logger with the scope of ctx.
func Log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if !slog.Default().Enabled(ctx, level) {
		return
	}
	slog.LogAttrs(ctx, level, msg, append(ScopeFrom(ctx).Attrs(), attrs...)...)
}

func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Log(ctx, slog.LevelDebug, msg, attrs...)
}

func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Log(ctx, slog.LevelInfo, msg, attrs...)
}

func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Log(ctx, slog.LevelWarn, msg, attrs...)
}

func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Log(ctx, slog.LevelError, msg, attrs...)
}
