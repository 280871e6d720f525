package ports

import (
	"io"

	"go.trai.ch/imgopt/internal/core/domain"
)

// Sitemap reads and writes a site's resource list.
//
//go:generate go run go.uber.org/mock/mockgen -source=sitemap.go -destination=mocks/mock_sitemap.go -package=mocks
type Sitemap interface {
	// Load reads the resources listed in the file at path.
	Load(path string) ([]domain.Resource, error)
	// Write encodes resources to w.
	Write(w io.Writer, resources []domain.Resource) error
}
