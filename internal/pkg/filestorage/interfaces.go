package filestorage

import "time"

// FileInfo represents information about a stored file
type FileInfo struct {
	Path    string    // Path relative to the storage root, as kept in the database
	Size    int64     // Size in bytes
	ModTime time.Time // Last modification time
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Store writes content under a fresh unique name and returns its relative path.
	// The extension of originalName is kept.
	Store(content []byte, originalName string) (string, error)

	// Delete removes a stored file. Missing files are not an error.
	Delete(relPath string) error

	// FullPath resolves a stored relative path to its filesystem location
	FullPath(relPath string) (string, error)

	// List returns every stored requirement file
	List() ([]FileInfo, error)
}
