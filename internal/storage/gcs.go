package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStorage serves background clips from a bucket, caching each clip on
// local disk so ffmpeg reads a file, not a stream.
type GCSStorage struct {
	client   *storage.Client
	bucket   string
	prefix   string
	cacheDir string
}

var _ BackgroundProvider = (*GCSStorage)(nil)

func NewGCSStorage(ctx context.Context, bucket, prefix, cacheDir string) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &GCSStorage{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		cacheDir: cacheDir,
	}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) RandomBackgroundClip(ctx context.Context) (string, error) {
	clips, err := s.listBackgroundClips(ctx)
	if err != nil {
		return "", err
	}

	if len(clips) == 0 {
		return "", fmt.Errorf("no video clips found in gs://%s/%s", s.bucket, s.prefix)
	}

	remotePath := clips[rand.Intn(len(clips))]
	localPath := filepath.Join(s.cacheDir, filepath.Base(remotePath))

	if _, err := os.Stat(localPath); err == nil {
		return localPath, nil
	}

	if err := s.download(ctx, remotePath, localPath); err != nil {
		return "", fmt.Errorf("download background clip: %w", err)
	}

	return localPath, nil
}

func (s *GCSStorage) listBackgroundClips(ctx context.Context) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})

	var clips []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list bucket objects: %w", err)
		}

		ext := strings.ToLower(filepath.Ext(attrs.Name))
		if ext == ".mp4" || ext == ".mov" || ext == ".mkv" {
			clips = append(clips, attrs.Name)
		}
	}

	return clips, nil
}

func (s *GCSStorage) download(ctx context.Context, remotePath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	r, err := s.client.Bucket(s.bucket).Object(remotePath).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open object reader: %w", err)
	}
	defer func() { _ = r.Close() }()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("copy object: %w", err)
	}

	return nil
}

func (s *GCSStorage) EnsureCacheDir() error {
	return os.MkdirAll(s.cacheDir, 0755)
}
