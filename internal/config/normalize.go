package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments and warnings from the normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated and bounded fields before defaults
// are applied. Unknown enum values fall back to their default with a warning.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	normalizeEnum(res, "build.date_source", &c.Build.DateSource, dateSourceEnum.Parse)
	normalizeEnum(res, "monitoring.logging.level", &c.Monitoring.Logging.Level, logLevelEnum.Parse)
	normalizeEnum(res, "monitoring.logging.format", &c.Monitoring.Logging.Format, logFormatEnum.Parse)

	if c.Build.Concurrency < 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("build.concurrency: %d is negative, using default", c.Build.Concurrency))
		c.Build.Concurrency = 0
	}
	for i, ext := range c.Markdown.Extensions {
		c.Markdown.Extensions[i] = strings.ToLower(strings.TrimSpace(ext))
	}
	return res
}

func normalizeEnum[T ~string](res *NormalizationResult, field string, v *T, normalize func(string) (T, error)) {
	raw := string(*v)
	if strings.TrimSpace(raw) == "" {
		return
	}
	out, err := normalize(raw)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v; using default", field, err))
	} else if string(out) != raw {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: normalized %q to %q", field, raw, out))
	}
	*v = out
}
