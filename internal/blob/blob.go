package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds S3-compatible storage configuration. PublicBaseURL is the
// prefix served to browsers; list rows store the full URL.
type Config struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// Enabled reports whether enough configuration is present to talk to a
// bucket. Without it the thumbnail endpoints are disabled, not broken.
func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

const (
	keyPrefix    = "uploads/"
	maxUploadTry = 3
)

// allowedExtensions mirrors what the upload handler accepts.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ValidExtension reports whether a filename carries an accepted image
// extension.
func ValidExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(path.Ext(filename))]
}

// Store uploads and removes list thumbnails in S3-compatible storage.
type Store struct {
	cfg    Config
	client s3Client
}

func New(cfg Config) *Store {
	s := &Store{cfg: cfg}
	if cfg.Enabled() {
		s.client = newS3Client(cfg)
	}
	return s
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func (s *Store) Enabled() bool {
	return s.client != nil
}

// Upload stores image bytes under a fresh object key and returns the public
// URL. Transient failures are retried with exponential backoff; the caller
// owns any timeout on ctx.
func (s *Store) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("blob storage not configured")
	}
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}

	key := keyPrefix + uuid.NewString() + ext
	backoff := retry.WithMaxRetries(maxUploadTry, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.cfg.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("upload thumbnail: %w", err)
	}
	return s.URLFor(key), nil
}

// Fetch reads an object back. Used by the serving path when the bucket is
// not directly reachable by browsers.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	if s.client == nil {
		return nil, "", fmt.Errorf("blob storage not configured")
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("fetch thumbnail: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read thumbnail: %w", err)
	}
	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return data, contentType, nil
}

// Delete removes an object by its public URL. Unknown URLs are a no-op so a
// list can always drop its thumbnail reference.
func (s *Store) Delete(ctx context.Context, url string) error {
	if s.client == nil {
		return nil
	}
	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete thumbnail: %w", err)
	}
	return nil
}

// URLFor maps an object key to its public URL.
func (s *Store) URLFor(key string) string {
	return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + key
}

func (s *Store) keyFromURL(url string) (string, bool) {
	base := strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/"
	if !strings.HasPrefix(url, base) {
		return "", false
	}
	key := strings.TrimPrefix(url, base)
	if !strings.HasPrefix(key, keyPrefix) {
		return "", false
	}
	return key, true
}
