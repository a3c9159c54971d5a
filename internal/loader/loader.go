// Package loader reads model-set documents into a models.ModelSet.
//
// A document lists models in the order they should be composed:
//
//	models:
//	  - index: Address
//	    usages:
//	      - parent: User
//	      - {}
//
// A usage without a type refers to the model it is listed under; a usage
// without a parent is unowned.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/modelforest/internal/models"
)

// Format identifies a document encoding.
type Format string

// Supported document formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for files whose extension is not recognised.
var ErrUnknownFormat = errors.New("unknown document format")

// Document is the on-disk shape of a model set.
type Document struct {
	Models []ModelEntry `json:"models" yaml:"models"`
}

// ModelEntry is one model of a Document.
type ModelEntry struct {
	Index  string       `json:"index" yaml:"index"`
	Usages []UsageEntry `json:"usages,omitempty" yaml:"usages,omitempty"`
}

// UsageEntry is one usage of a ModelEntry.
type UsageEntry struct {
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (*models.ModelSet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	set, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes data in the given format and builds the model set.
func Parse(data []byte, format Format) (*models.ModelSet, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return doc.ModelSet()
}

// ModelSet converts the document, keeping model order.
func (d *Document) ModelSet() (*models.ModelSet, error) {
	set, err := models.NewModelSet()
	if err != nil {
		return nil, err
	}
	for i, entry := range d.Models {
		def := &models.ModelDefinition{Index: entry.Index}
		for _, u := range entry.Usages {
			typ := u.Type
			if typ == "" {
				typ = entry.Index
			}
			def.Usages = append(def.Usages, models.UsageReference{Type: typ, Parent: u.Parent})
		}
		if err := set.Add(def); err != nil {
			return nil, fmt.Errorf("models[%d]: %w", i, err)
		}
	}
	return set, nil
}
