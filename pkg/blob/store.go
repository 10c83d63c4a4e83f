// Package blob defines the durable content store behind the image index.
// Blobs are addressed by opaque object names derived from image identifiers;
// the store never interprets names beyond prefix listing.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
// A missing blob whose name came from a committed vector row is an integrity
// violation, not an empty result; callers surface it accordingly.
var ErrNotFound = errors.New("blob not found")

// Store is durable content storage keyed by object name.
type Store interface {
	// Put writes a blob. Re-uploading the same name overwrites; callers
	// rely on this for retry-safety.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads a blob. Missing names yield ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Exists reports whether a blob is present without reading it.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns all blob names with the given prefix, sorted ascending.
	List(ctx context.Context, prefix string) ([]string, error)

	// EnsureBucket provisions the backing container. It is idempotent and
	// safe to call concurrently from multiple instances; failure is fatal
	// for the service at startup.
	EnsureBucket(ctx context.Context) error
}
