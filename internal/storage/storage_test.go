package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestNewKey(t *testing.T) {
	a := NewKey(7, "Poster.PNG")
	b := NewKey(7, "Poster.PNG")
	if a == b {
		t.Fatal("keys must be unique")
	}
	if !strings.HasPrefix(a, "projects/7/") || !strings.HasSuffix(a, ".png") {
		t.Errorf("unexpected key %s", a)
	}
}

func TestLocalStoreSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "/uploads/")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	path, err := store.Save(ctx, "projects/1/a.txt", "text/plain", []byte("hello"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != "/uploads/projects/1/a.txt" {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(filepath.Join(root, "projects", "1", "a.txt"))
	if err != nil || string(data) != "hello" {
		t.Fatalf("file content = %q, err = %v", data, err)
	}

	if err := store.Delete(ctx, path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "projects", "1", "a.txt")); !os.IsNotExist(err) {
		t.Errorf("file should be removed, stat err = %v", err)
	}
	// 重复删除不报错
	if err := store.Delete(ctx, path); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	if _, err := store.Save(context.Background(), "../escape.txt", "text/plain", []byte("x")); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}

type fakeS3 struct {
	puts    map[string][]byte
	deleted []string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	fake := &fakeS3{puts: map[string][]byte{}}
	store := &S3Store{client: fake, bucket: "media", region: "ap-northeast-2"}

	path, err := store.Save(context.Background(), "projects/1/x.png", "image/png", []byte{1, 2})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != "https://media.s3.ap-northeast-2.amazonaws.com/projects/1/x.png" {
		t.Errorf("path = %s", path)
	}
	if err := store.Delete(context.Background(), path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "projects/1/x.png" {
		t.Errorf("deleted = %v", fake.deleted)
	}
}
