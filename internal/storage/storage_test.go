package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestListBackgroundClips(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mp4", "b.mov", "c.txt", "d.mkv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	s := NewLocalStorage(dir, t.TempDir())
	clips, err := s.ListBackgroundClips()
	if err != nil {
		t.Fatalf("ListBackgroundClips() error: %v", err)
	}
	if len(clips) != 3 {
		t.Errorf("got %d clips, want 3 (txt excluded)", len(clips))
	}
}

func TestRandomBackgroundClipEmpty(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), t.TempDir())
	if _, err := s.RandomBackgroundClip(context.Background()); err == nil {
		t.Error("expected error with no clips")
	}
}

func TestDirSizeMB(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.bin"), make([]byte, 1024*1024), 0644); err != nil {
		t.Fatal(err)
	}

	size, err := DirSizeMB(dir)
	if err != nil {
		t.Fatalf("DirSizeMB() error: %v", err)
	}
	if size < 0.99 || size > 1.01 {
		t.Errorf("DirSizeMB() = %v, want ~1", size)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	s := NewLocalStorage(filepath.Join(base, "bg"), filepath.Join(base, "out"))
	if err := s.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "bg")); err != nil {
		t.Error("background dir not created")
	}
}
