package storage

import (
	"context"
	"io"
)

// ObjectStore abstracts the object storage backend. Paths are
// forward-slash-separated keys namespaced by workspace. Store refuses to
// overwrite an existing path; the upload pipeline relies on that to detect
// path collisions instead of silently clobbering bytes.
type ObjectStore interface {
	// Store writes the object at path. It fails with a StorageError if the
	// path already exists.
	Store(ctx context.Context, path string, reader io.Reader) error

	// Retrieve opens the object at path for reading.
	Retrieve(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at path. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether an object is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// URL derives the public retrieval URL for a stored path.
	URL(path string) string
}
