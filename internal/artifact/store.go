package artifact

import (
	"context"
	"errors"
	"path"
)

// ErrNotFound reports that no artifact exists at the requested key.
var ErrNotFound = errors.New("artifact not found")

// Store is the blob-store port for model artifacts. The reference deployment
// uses the local filesystem; GCS is available for shared deployments.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Key derives the deterministic artifact path for a model version.
func Key(categoryID, version string) string {
	return path.Join(categoryID, version, "model.json")
}
