package page

import (
	"strconv"

	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/properties"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// DefaultDateFormat renders page dates as day-month-year.
const DefaultDateFormat = "02-01-2006"

// Site is the read-only site metadata shared by every page of a build.
type Site struct {
	Title       string
	Language    string
	Version     string
	Placeholder string
	// FooterInfo and FooterContact hold HTML.
	FooterInfo    string
	FooterContact string
	Generator     string
	DateFormat    string
}

// NewSite derives the site metadata from the loaded properties. Footer
// texts containing markup are converted to HTML.
func NewSite(p *properties.Properties, md *markdown.Converter, dateFormat string) (Site, error) {
	info, err := md.ConvertInline(p.FooterInfo)
	if err != nil {
		return Site{}, err
	}
	contact, err := md.ConvertInline(p.FooterContact)
	if err != nil {
		return Site{}, err
	}
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	return Site{
		Title:         p.Name,
		Language:      p.Language,
		Version:       strconv.Itoa(p.Version),
		Placeholder:   p.TBD,
		FooterInfo:    info,
		FooterContact: contact,
		Generator:     version.Generator(),
		DateFormat:    dateFormat,
	}, nil
}
