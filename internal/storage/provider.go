// Package storage defines the file-system abstraction used for post sources and site output.
package storage

// Provider is the interface for file operations rooted at one directory.
type Provider interface {
	// Files returns the relative path of every regular file under dir.
	Files(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
	// Root returns the absolute root directory.
	Root() string
}
