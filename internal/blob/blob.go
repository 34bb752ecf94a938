// Package blob stores uploaded files (item photos, vehicle documents) as
// opaque references. The catalog only ever persists the reference string.
package blob

import (
	"context"
	"io"
)

// Store is the interface the handlers depend on.
type Store interface {
	// Save writes the stream and returns the opaque reference. The
	// suggested name only contributes its extension.
	Save(ctx context.Context, suggestedName string, r io.Reader) (ref string, err error)
	// Open returns the blob contents and its content type.
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, ref string) error
}
