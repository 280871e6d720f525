package domain

// ResourceKind tags the category of a sitemap resource.
type ResourceKind string

const (
	// KindPage is an ordinary sitemap resource rendered from a source file.
	KindPage ResourceKind = "page"
	// KindManifest is the synthetic resource publishing the optimization manifest.
	KindManifest ResourceKind = "manifest"
	// KindProxy is a resource derived from another resource rather than a file of its own.
	KindProxy ResourceKind = "proxy"
	// KindRedirect is a synthetic redirect entry.
	KindRedirect ResourceKind = "redirect"
)

// Valid reports whether k is a known resource kind.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindPage, KindManifest, KindProxy, KindRedirect:
		return true
	default:
		return false
	}
}

// Resource is a sitemap entry mapping a destination path to the file it is served from.
type Resource struct {
	Kind ResourceKind `yaml:"kind"`
	// DestinationPath is the slash separated path of the resource in the published site.
	DestinationPath string `yaml:"path"`
	// SourcePath is the file the resource content is read from. Empty for placeholder resources.
	SourcePath string `yaml:"source,omitempty"`
}

// WithSource returns a copy of r bound to a different source file.
func (r Resource) WithSource(path string) Resource {
	r.SourcePath = path
	return r
}
