package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 records calls and can fail the first N puts.
type fakeS3 struct {
	objects  map[string][]byte
	types    map[string]string
	putFails int
	putCalls int
	deleted  []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putCalls++
	if f.putCalls <= f.putFails {
		return nil, errors.New("transient upstream error")
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*input.Key] = data
	if input.ContentType != nil {
		f.types[*input.Key] = *input.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*input.Key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String(f.types[*input.Key]),
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *input.Key)
	f.deleted = append(f.deleted, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func newTestStore(fake *fakeS3) *Store {
	return &Store{
		cfg: Config{
			Bucket:        "thumbs",
			PublicBaseURL: "https://cdn.example.com",
		},
		client: fake,
	}
}

func TestUploadStoresAndReturnsURL(t *testing.T) {
	fake := newFakeS3()
	store := newTestStore(fake)

	url, err := store.Upload(context.Background(), "photo.PNG", "image/png", []byte("pixels"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/uploads/") {
		t.Errorf("url = %q", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %q, extension should be lowercased and kept", url)
	}
	if len(fake.objects) != 1 {
		t.Fatalf("stored %d objects, want 1", len(fake.objects))
	}
	for key, data := range fake.objects {
		if string(data) != "pixels" {
			t.Errorf("stored data = %q", data)
		}
		if fake.types[key] != "image/png" {
			t.Errorf("content type = %q", fake.types[key])
		}
	}
}

func TestUploadRetriesTransientFailures(t *testing.T) {
	fake := newFakeS3()
	fake.putFails = 2
	store := newTestStore(fake)

	if _, err := store.Upload(context.Background(), "a.jpg", "image/jpeg", []byte("x")); err != nil {
		t.Fatalf("upload should succeed after retries: %v", err)
	}
	if fake.putCalls != 3 {
		t.Errorf("put calls = %d, want 3", fake.putCalls)
	}
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	store := newTestStore(newFakeS3())

	if _, err := store.Upload(context.Background(), "notes.txt", "text/plain", []byte("x")); err == nil {
		t.Error("expected rejection for non-image extension")
	}
}

func TestUploadUniqueKeys(t *testing.T) {
	fake := newFakeS3()
	store := newTestStore(fake)

	u1, err := store.Upload(context.Background(), "a.png", "image/png", []byte("1"))
	if err != nil {
		t.Fatal(err)
	}
	u2, err := store.Upload(context.Background(), "a.png", "image/png", []byte("2"))
	if err != nil {
		t.Fatal(err)
	}
	if u1 == u2 {
		t.Error("same filename must not collide on object key")
	}
}

func TestFetchRoundTrip(t *testing.T) {
	fake := newFakeS3()
	store := newTestStore(fake)

	url, err := store.Upload(context.Background(), "a.png", "image/png", []byte("pixels"))
	if err != nil {
		t.Fatal(err)
	}
	key, ok := store.keyFromURL(url)
	if !ok {
		t.Fatalf("could not extract key from %q", url)
	}

	data, contentType, err := store.Fetch(context.Background(), key)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(data) != "pixels" || contentType != "image/png" {
		t.Errorf("fetch = %q, %q", data, contentType)
	}
}

func TestDeleteByURL(t *testing.T) {
	fake := newFakeS3()
	store := newTestStore(fake)

	url, err := store.Upload(context.Background(), "a.png", "image/png", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(context.Background(), url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(fake.objects) != 0 {
		t.Error("object should be gone")
	}

	// Foreign URLs are ignored rather than treated as bucket keys.
	if err := store.Delete(context.Background(), "https://elsewhere.example.com/x.png"); err != nil {
		t.Errorf("foreign url delete err = %v", err)
	}
	if len(fake.deleted) != 1 {
		t.Errorf("delete calls = %d, want 1", len(fake.deleted))
	}
}

func TestValidExtension(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.gif", "e.webp"} {
		if !ValidExtension(name) {
			t.Errorf("%s should be accepted", name)
		}
	}
	for _, name := range []string{"a.txt", "b.svg", "noext"} {
		if ValidExtension(name) {
			t.Errorf("%s should be rejected", name)
		}
	}
}

func TestDisabledStore(t *testing.T) {
	store := New(Config{})
	if store.Enabled() {
		t.Error("store without credentials should be disabled")
	}
	if _, err := store.Upload(context.Background(), "a.png", "image/png", []byte("x")); err == nil {
		t.Error("upload on disabled store should fail")
	}
	if err := store.Delete(context.Background(), "anything"); err != nil {
		t.Errorf("delete on disabled store should be a no-op: %v", err)
	}
}
