package structure

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// IDLength is the length of generated page ids.
const IDLength = 5

// Issue is one problem found in the structure table.
type Issue struct {
	PageID  string
	Message string
}

func (i Issue) String() string {
	if i.PageID == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.PageID, i.Message)
}

// Report collects validation results. Errors make the table unusable;
// warnings are ambiguities the build resolves deterministically.
type Report struct {
	Errors   []Issue
	Warnings []Issue
}

// OK reports whether there are no errors. With strict, warnings count too.
func (r Report) OK(strict bool) bool {
	if strict {
		return len(r.Errors) == 0 && len(r.Warnings) == 0
	}
	return len(r.Errors) == 0
}

// Err returns a validation error summarising the report, or nil when OK.
func (r Report) Err(strict bool) error {
	if r.OK(strict) {
		return nil
	}
	issues := r.Errors
	if strict {
		issues = append(append([]Issue{}, r.Errors...), r.Warnings...)
	}
	msgs := make([]string, len(issues))
	for i, is := range issues {
		msgs[i] = is.String()
	}
	joined := strings.Join(msgs, "; ")
	return errors.ValidationError("structure table failed validation: "+joined).
		WithContext("issues", joined).
		WithContext("count", len(issues)).
		Build()
}

// Validate checks rows for missing or malformed ids and orders, duplicate
// page ids, duplicate crossref codes and order ties. The row that sorts
// first becomes the site root and may leave every name blank.
func Validate(rows []Row) Report {
	var rep Report

	ids := map[string]int{}
	codes := map[string]string{}
	ties := map[[4]int]string{}

	root := rootIndex(rows)
	for i, row := range rows {
		if err := validateRow(row, i == root); err != nil {
			rep.Errors = append(rep.Errors, Issue{PageID: row.PageID, Message: err.Error()})
		}

		if row.PageID != "" {
			ids[row.PageID]++
			if ids[row.PageID] == 2 {
				rep.Errors = append(rep.Errors, Issue{PageID: row.PageID, Message: "duplicate page id"})
			}
		}

		if code := strings.TrimSpace(row.Code); code != "" {
			if first, dup := codes[code]; dup {
				rep.Warnings = append(rep.Warnings, Issue{
					PageID:  row.PageID,
					Message: fmt.Sprintf("crossref code %q already used by %s", code, first),
				})
			} else {
				codes[code] = row.PageID
			}
		}

		key := [4]int{row.SectionOrder, row.ChapterOrder, row.GroupOrder, row.PageOrder}
		if first, dup := ties[key]; dup {
			rep.Warnings = append(rep.Warnings, Issue{
				PageID:  row.PageID,
				Message: fmt.Sprintf("order %v ties with %s; table order decides", key, first),
			})
		} else {
			ties[key] = row.PageID
		}
	}
	return rep
}

func validateRow(r Row, root bool) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PageID, validation.Required, validation.RuneLength(IDLength, IDLength)),
		validation.Field(&r.SectionOrder, validation.Required, validation.Min(1)),
		validation.Field(&r.ChapterOrder, validation.Required, validation.Min(1)),
		validation.Field(&r.GroupOrder, validation.Required, validation.Min(1)),
		validation.Field(&r.PageOrder, validation.Required, validation.Min(1)),
		validation.Field(&r.Page, validation.By(func(any) error {
			if _, ok := ResolveHref(r.Section, r.Chapter, r.Page); !ok && !root {
				return validation.NewError("structure.row.name_required", "needs a section, chapter or page name")
			}
			return nil
		})),
	)
}
