package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPageID     = "page_id"
	KeyHref       = "href"
	KeyDirective  = "directive"
	KeyArgument   = "argument"
	KeySection    = "section"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyRow        = "row"
	KeyCount      = "count"
	KeyWorker     = "worker"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyURL        = "url"
	KeySchedule   = "schedule_name"
	KeyVersion    = "version"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func PageID(id string) slog.Attr       { return slog.String(KeyPageID, id) }
func Href(h string) slog.Attr          { return slog.String(KeyHref, h) }
func Directive(name string) slog.Attr  { return slog.String(KeyDirective, name) }
func Argument(arg string) slog.Attr    { return slog.String(KeyArgument, arg) }
func Section(s string) slog.Attr       { return slog.String(KeySection, s) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Row(i int) slog.Attr              { return slog.Int(KeyRow, i) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Worker(w int) slog.Attr           { return slog.Int(KeyWorker, w) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func ScheduleName(n string) slog.Attr  { return slog.String(KeySchedule, n) }
func Version(v string) slog.Attr       { return slog.String(KeyVersion, v) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
