package ports

// FileLister enumerates the files of a build directory.
//
//go:generate go run go.uber.org/mock/mockgen -source=walker.go -destination=mocks/mock_walker.go -package=mocks
type FileLister interface {
	// ListFiles returns every regular file under root. It fails if root cannot be read.
	ListFiles(root string) ([]string, error)
}
