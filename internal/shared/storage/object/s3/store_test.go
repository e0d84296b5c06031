package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"hirevision-backend/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  map[string][]byte
	getKeys []string
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if f.bodies == nil {
		f.bodies = map[string][]byte{}
	}
	f.bodies[aws.ToString(params.Key)] = data
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Key)
	f.getKeys = append(f.getKeys, key)
	data, ok := f.bodies[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.bodies, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStorePutAndOpen(t *testing.T) {
	api := &fakeS3{}
	store := NewWithClient(api, "bucket", "/root/", "")
	ctx := context.Background()

	n, err := store.Put(ctx, "resume-builds/b1/resume.tex", "application/x-tex", strings.NewReader(`\documentclass{article}`))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != int64(len(`\documentclass{article}`)) {
		t.Fatalf("unexpected size %d", n)
	}
	put := api.puts[0]
	if aws.ToString(put.Key) != "root/resume-builds/b1/resume.tex" {
		t.Fatalf("unexpected key %q", aws.ToString(put.Key))
	}
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 encryption, got %q", put.ServerSideEncryption)
	}

	rc, err := store.Open(ctx, "resume-builds/b1/resume.tex")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != `\documentclass{article}` {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestStoreUsesKMSWhenConfigured(t *testing.T) {
	api := &fakeS3{}
	store := NewWithClient(api, "bucket", "", "kms-1")
	if _, err := store.Put(context.Background(), "k", "", strings.NewReader("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	put := api.puts[0]
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(put.SSEKMSKeyId) != "kms-1" {
		t.Fatalf("expected kms encryption, got %+v", put)
	}
	if put.ContentType != nil {
		t.Fatalf("empty content type should be omitted")
	}
}

func TestStoreRejectsBadKey(t *testing.T) {
	store := NewWithClient(&fakeS3{}, "bucket", "", "")
	if _, err := store.Open(context.Background(), "../x"); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	api := &fakeS3{}
	store := NewWithClient(api, "bucket", "root", "")
	ctx := context.Background()

	if _, err := store.Put(ctx, "uploads/u/r/resume.pdf", "application/pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "uploads/u/r/resume.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := api.bodies["root/uploads/u/r/resume.pdf"]; ok {
		t.Fatalf("object should be gone")
	}
	if err := store.Delete(ctx, "../escape"); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
