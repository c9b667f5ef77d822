package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iliyamo/pv-site-manager/internal/config"
)

func TestLocalStorePut(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root)

	key := "uploads/20240601_101500_abc_photo.png"
	if err := s.Put(context.Background(), key, strings.NewReader("pixels"), 6, "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(root, "uploads", "20240601_101500_abc_photo.png"))
	if err != nil || string(b) != "pixels" {
		t.Fatalf("read back %q %v", b, err)
	}

	if err := s.Put(context.Background(), key, strings.NewReader("again"), 5, ""); err == nil {
		t.Fatal("expected error when overwriting an existing blob")
	}
}

func TestLocalStoreRejectsEscapes(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	for _, key := range []string{"../evil", "/etc/passwd", "uploads/../../x"} {
		if err := s.Put(context.Background(), key, strings.NewReader(""), 0, ""); err == nil {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}

func TestNewObjectStoreParsesEndpoint(t *testing.T) {
	s, err := NewObjectStore(config.StorageConfig{
		Endpoint: "https://minio.local:9000", AccessKey: "a", SecretKey: "b", Bucket: "docs",
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.client.EndpointURL().Host != "minio.local:9000" || s.client.EndpointURL().Scheme != "https" {
		t.Fatalf("unexpected endpoint %v", s.client.EndpointURL())
	}
}
