package storage

import (
	"context"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
)

type LocalStorage struct {
	backgroundDir string
	outputDir     string
}

func NewLocalStorage(backgroundDir, outputDir string) *LocalStorage {
	return &LocalStorage{
		backgroundDir: backgroundDir,
		outputDir:     outputDir,
	}
}

func (s *LocalStorage) RandomBackgroundClip(ctx context.Context) (string, error) {
	clips, err := s.ListBackgroundClips()
	if err != nil {
		return "", err
	}

	if len(clips) == 0 {
		return "", fmt.Errorf("no video clips found in %s", s.backgroundDir)
	}

	return clips[rand.Intn(len(clips))], nil
}

func (s *LocalStorage) ListBackgroundClips() ([]string, error) {
	entries, err := os.ReadDir(s.backgroundDir)
	if err != nil {
		return nil, fmt.Errorf("read background directory: %w", err)
	}

	var clips []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".mp4" || ext == ".mov" || ext == ".mkv" {
			clips = append(clips, filepath.Join(s.backgroundDir, entry.Name()))
		}
	}

	return clips, nil
}

func (s *LocalStorage) EnsureDirectories() error {
	if err := os.MkdirAll(s.backgroundDir, 0755); err != nil {
		return fmt.Errorf("create background directory: %w", err)
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	return nil
}

// DirSizeMB totals the size of every regular file under path.
func DirSizeMB(path string) (float64, error) {
	var bytes int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		bytes += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return float64(bytes) / (1024 * 1024), nil
}

// FileSizeMB returns the size of one file in megabytes.
func FileSizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return float64(info.Size()) / (1024 * 1024), nil
}
