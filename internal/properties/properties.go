// Package properties persists the site metadata kept next to the content:
// the site name, the build version and the footer texts.
package properties

import (
	derrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// FileName is the properties file name inside the content directory.
const FileName = "properties.yaml"

// Properties is the persisted site metadata.
type Properties struct {
	Name          string `yaml:"name"`
	Version       int    `yaml:"version"`
	Language      string `yaml:"language"`
	TBD           string `yaml:"tbd"`
	FooterInfo    string `yaml:"footer_info"`
	FooterContact string `yaml:"footer_contact"`
}

// Defaults returns the properties written for a new site.
func Defaults() Properties {
	return Properties{
		Name:          "<name of the site>",
		Version:       0,
		Language:      "en",
		TBD:           "This page has no content yet.",
		FooterInfo:    "<text for the information\nsection of the footer>",
		FooterContact: "<text for the contact\nsection of the footer>",
	}
}

// Validate checks the loaded values.
func (p Properties) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Version, validation.Min(0)),
		validation.Field(&p.Language, validation.Required, validation.RuneLength(2, 35)),
	)
}

// Load reads the properties file at path, creating it with Defaults when it
// does not exist. With increment the build version is bumped by one; the
// caller persists the new value with Save once the build succeeds.
func Load(path string, increment bool) (*Properties, error) {
	data, err := os.ReadFile(path)
	if derrors.Is(err, fs.ErrNotExist) {
		p := Defaults()
		if err := p.Save(path); err != nil {
			return nil, err
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read site properties").
			WithContext("path", path).
			Build()
	}

	var p Properties
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse site properties").
			WithContext("path", path).
			Fatal().
			Build()
	}
	if err := p.Validate(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid site properties").
			WithContext("path", path).
			Fatal().
			Build()
	}
	if increment {
		p.Version++
	}
	return &p, nil
}

// TempPath is the file Save writes before renaming it onto path.
func TempPath(path string) string {
	return path + ".tmp"
}

// Save writes the properties to path, replacing the file atomically.
func (p *Properties) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode site properties").Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.FileSystemError("create properties directory").WithCause(err).WithContext("path", path).Build()
	}
	tmp := TempPath(path)
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.FileSystemError("write site properties").WithCause(err).WithContext("path", tmp).Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.FileSystemError("replace site properties").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
