package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

var structureExtensions = []any{".xlsx", ".xlsm", ".csv"}

// Validate checks the whole configuration. It runs after defaults are applied.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Paths),
		validation.Field(&c.Structure),
		validation.Field(&c.Build),
		validation.Field(&c.Markdown),
		validation.Field(&c.Monitoring),
		validation.Field(&c.History),
		validation.Field(&c.Notify),
		validation.Field(&c.Preview),
	)
}

func (p PathsConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Content, validation.Required),
		validation.Field(&p.Templates, validation.Required),
		validation.Field(&p.Output, validation.Required, validation.By(distinctFrom(p.Content, "content"))),
	)
}

func (s StructureConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.File, validation.Required, validation.By(func(v any) error {
			ext := strings.ToLower(filepath.Ext(v.(string)))
			return validation.In(structureExtensions...).Error("must be an .xlsx, .xlsm or .csv file").Validate(ext)
		})),
	)
}

func (b BuildConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.DateFormat, validation.Required),
		validation.Field(&b.DateSource, validation.Required, validation.In(DateSourceFilesystem, DateSourceGit)),
		validation.Field(&b.Concurrency, validation.Required, validation.Min(1)),
		validation.Field(&b.BaseStylesheets, validation.Required),
	)
}

func (m MarkdownConfig) Validate() error {
	known := make([]any, 0)
	for _, name := range markdown.KnownExtensions() {
		known = append(known, name)
	}
	return validation.ValidateStruct(&m,
		validation.Field(&m.Extensions, validation.Each(validation.In(known...))),
	)
}

func (m MonitoringConfig) Validate() error {
	return validation.ValidateStruct(&m.Logging,
		validation.Field(&m.Logging.Level, validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)),
		validation.Field(&m.Logging.Format, validation.In(LogFormatJSON, LogFormatText)),
	)
}

func (h HistoryConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Path, validation.When(h.Enabled, validation.Required)),
	)
}

func (n NotifyConfig) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Subject, validation.When(n.NATSURL != "", validation.Required)),
	)
}

func (p PreviewConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&p.Debounce, validation.By(func(v any) error {
			if s := v.(string); s != "" {
				if _, err := time.ParseDuration(s); err != nil {
					return fmt.Errorf("must be a duration such as 500ms")
				}
			}
			return nil
		})),
	)
}

func distinctFrom(other, name string) validation.RuleFunc {
	return func(v any) error {
		if filepath.Clean(v.(string)) == filepath.Clean(other) {
			return fmt.Errorf("must differ from the %s directory", name)
		}
		return nil
	}
}
