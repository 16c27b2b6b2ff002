package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

var ErrInvalidUpload = errors.New("invalid upload")

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// UploadObject uploads bytes from r into bucket/objectPath with the provided contentType
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) error {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

// PublicURL builds a public URL for an object. baseURL defaults to the
// storage.googleapis.com host for bucket.
func PublicURL(baseURL, bucket, objectPath string) string {
	if baseURL == "" {
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
	}
	return strings.TrimRight(baseURL, "/") + "/" + objectPath
}

// ValidateImage rejects non-image content types and files over maxBytes.
func ValidateImage(contentType string, size, maxBytes int64) error {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return fmt.Errorf("%w: content type %q is not an image", ErrInvalidUpload, contentType)
	}
	if size <= 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidUpload)
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, maxBytes)
	}
	return nil
}

// ProfilePictureObject returns a unique object path for a user's picture.
func ProfilePictureObject(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("profile-pictures/%s/%s%s", userID, uuid.NewString(), ext)
}

// GCSUploader stores profile pictures in a bucket and returns their public URL.
type GCSUploader struct {
	client   *storage.Client
	bucket   string
	baseURL  string
	maxBytes int64
}

func NewGCSUploader(client *storage.Client, bucket, baseURL string, maxBytes int64) *GCSUploader {
	return &GCSUploader{client: client, bucket: bucket, baseURL: baseURL, maxBytes: maxBytes}
}

func (u *GCSUploader) UploadProfilePicture(ctx context.Context, userID, filename, contentType string, size int64, r io.Reader) (string, error) {
	if err := ValidateImage(contentType, size, u.maxBytes); err != nil {
		return "", err
	}
	object := ProfilePictureObject(userID, filename)
	if err := UploadObject(ctx, u.client, u.bucket, object, contentType, r); err != nil {
		return "", err
	}
	return PublicURL(u.baseURL, u.bucket, object), nil
}
