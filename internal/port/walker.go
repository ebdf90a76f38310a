package port

// FileWalker lists the files under a source root that should be scanned.
type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

// FileInfo is one selected file. Path is relative to the walked root and uses
// forward slashes.
type FileInfo struct {
	Path    string
	AbsPath string
	Size    int64
}

type FileReader interface {
	ReadFile(path string) (string, error)
}
