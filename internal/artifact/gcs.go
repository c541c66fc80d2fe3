package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type gcsStore struct {
	client *storage.Client
	bucket string
	prefix string
	log    *logger.Logger
}

// NewGCSStore returns a Store backed by a GCS bucket. credentialsFile may be
// empty, in which case application default credentials are used.
func NewGCSStore(ctx context.Context, bucket, prefix, credentialsFile string, baseLog *logger.Logger) (Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs artifact store requires a bucket name")
	}
	var opts []option.ClientOption
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &gcsStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    baseLog.With("store", "GCSArtifactStore", "bucket", bucket),
	}, nil
}

func (s *gcsStore) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *gcsStore) Put(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	w := s.client.Bucket(s.bucket).Object(s.objectKey(key)).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gcs artifact %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gcs writer for %q: %w", key, err)
	}
	return nil
}

func (s *gcsStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()
	r, err := s.client.Bucket(s.bucket).Object(s.objectKey(key)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open gcs artifact %q: %w", key, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gcs artifact %q: %w", key, err)
	}
	return data, nil
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := s.client.Bucket(s.bucket).Object(s.objectKey(key)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete gcs artifact %q: %w", key, err)
	}
	return nil
}
