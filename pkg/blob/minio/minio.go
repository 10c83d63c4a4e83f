// Package minio implements blob.Store for MinIO and S3-compatible object
// storage.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lookalike-dev/lookalike/pkg/blob"
)

// Config holds MinIO connection settings.
type Config struct {
	// Endpoint is the host:port of the object store, without scheme.
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// UseSSL enables TLS for the connection.
	UseSSL bool
}

// Store implements blob.Store on a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// Ensure Store implements blob.Store at compile time.
var _ blob.Store = (*Store)(nil)

// New creates a MinIO-backed blob store. The endpoint may carry an http://
// or https:// prefix; it is stripped, since the client takes the scheme from
// UseSSL.
func New(cfg Config) (*Store, error) {
	endpoint := strings.TrimPrefix(cfg.Endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Put writes a blob, overwriting any existing object of the same name.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, name,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "image/jpeg"},
	)
	if err != nil {
		return fmt.Errorf("putting object %s: %w", name, err)
	}
	return nil
}

// Get reads a blob into memory. Missing objects yield blob.ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting object %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, blob.ErrNotFound
		}
		return nil, fmt.Errorf("reading object %s: %w", name, err)
	}
	return data, nil
}

// Exists reports whether a blob is present without downloading it.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("statting object %s: %w", name, err)
	}
	return true, nil
}

// List returns all blob names with the given prefix, sorted ascending.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing objects: %w", obj.Err)
		}
		names = append(names, obj.Key)
	}
	sort.Strings(names)
	return names, nil
}

// EnsureBucket creates the bucket if it does not exist. Losing a creation
// race against another instance is treated as success.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil {
		// Another instance may have created it concurrently.
		exists, checkErr := s.client.BucketExists(ctx, s.bucket)
		if checkErr == nil && exists {
			return nil
		}
		return fmt.Errorf("creating bucket %s: %w", s.bucket, err)
	}
	return nil
}

// isNotFound checks for the S3 NoSuchKey/NotFound error codes.
func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
