// Package objectstore uploads images to S3 compatible object storage.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/config"
)

// Store writes objects and tells where they are publicly served.
type Store interface {
	Put(ctx context.Context, bucket, key, contentType string, data []byte) (string, error)
}

// Minio stores objects in a minio or S3 bucket.
type Minio struct {
	client    *minio.Client
	publicURL string

	mu      sync.Mutex
	buckets map[string]bool
}

// NewMinio creates the minio client described by cfg.
func NewMinio(cfg config.ObjectStorage) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}

		publicURL = scheme + "://" + cfg.Endpoint
	}

	return &Minio{client: client, publicURL: publicURL, buckets: map[string]bool{}}, nil
}

// Put uploads data under bucket/key, creating the bucket with a public read policy
// on first use, and returns the public URL.
func (m *Minio) Put(ctx context.Context, bucket, key, contentType string, data []byte) (string, error) {
	if err := m.ensureBucket(ctx, bucket); err != nil {
		return "", err
	}

	_, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Debug().Str("bucket", bucket).Str("key", key).Int("size", len(data)).Msg("object uploaded")

	return PublicURL(m.publicURL, bucket, key), nil
}

func (m *Minio) ensureBucket(ctx context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.buckets[bucket] {
		return nil
	}

	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err = m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		if err = m.client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
			return fmt.Errorf("failed to set bucket policy: %w", err)
		}

		log.Info().Str("bucket", bucket).Msg("bucket created")
	}

	m.buckets[bucket] = true

	return nil
}

// PublicURL joins the public base, bucket and key.
func PublicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}

func publicReadPolicy(bucket string) string {
	return `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},` +
		`"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::` + bucket + `/*"]}]}`
}

// Memory keeps objects in memory. It backs the backend role when object storage is
// disabled and is used by tests.
type Memory struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string]Object
}

// Object is an object held by Memory.
type Object struct {
	ContentType string
	Data        []byte
}

// NewMemory returns an empty in-memory store serving URLs below baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{BaseURL: baseURL, objects: map[string]Object{}}
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, bucket, key, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[bucket+"/"+key] = Object{ContentType: contentType, Data: bytes.Clone(data)}

	return PublicURL(m.BaseURL, bucket, key), nil
}

// Get returns a stored object.
func (m *Memory) Get(bucket, key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.objects[bucket+"/"+key]

	return o, ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.objects)
}
