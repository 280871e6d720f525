// Package sitemap reads and writes resource lists as YAML.
package sitemap

import (
	"io"
	"os"

	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.Sitemap = (*Codec)(nil)

// document is the YAML layout of a sitemap file.
type document struct {
	Resources []domain.Resource `yaml:"resources"`
}

// Codec implements ports.Sitemap.
type Codec struct{}

// NewCodec creates a new Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Load reads the resources listed in the file at path. Entries without a kind are pages.
func (c *Codec) Load(path string) ([]domain.Resource, error) {
	//nolint:gosec // path is provided by user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSitemapReadFailed.Error()), "path", path)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSitemapParseFailed.Error()), "path", path)
	}

	for i := range doc.Resources {
		r := &doc.Resources[i]
		if r.Kind == "" {
			r.Kind = domain.KindPage
		}
		if !r.Kind.Valid() {
			return nil, zerr.With(zerr.With(domain.ErrUnknownResourceKind, "kind", string(r.Kind)), "path", r.DestinationPath)
		}
	}

	return doc.Resources, nil
}

// Write encodes resources to w.
func (c *Codec) Write(w io.Writer, resources []domain.Resource) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Resources: resources}); err != nil {
		return zerr.Wrap(err, "failed to encode sitemap")
	}
	return enc.Close()
}
