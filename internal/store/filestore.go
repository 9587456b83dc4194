package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore writes binary artifacts (synthesized audio) under a base
// directory and returns URLs the HTTP server can serve them from. It is the
// local-filesystem object store of the audio stage.
type FileStore struct {
	baseDir string
	urlBase string
}

// NewFileStore creates an artifact store rooted at baseDir. Returned URLs
// are prefixed with urlBase (e.g. "/audio").
func NewFileStore(baseDir, urlBase string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileStore{
		baseDir: baseDir,
		urlBase: strings.TrimSuffix(urlBase, "/"),
	}, nil
}

// Save writes data under name and returns the retrievable URL.
func (f *FileStore) Save(name string, data []byte) (string, error) {
	name = filepath.Base(name) // No path traversal through artifact names
	path := filepath.Join(f.baseDir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	return f.urlBase + "/" + name, nil
}

// Dir returns the base directory, for static file serving.
func (f *FileStore) Dir() string {
	return f.baseDir
}
