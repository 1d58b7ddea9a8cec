package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsPublicBase = "https://storage.googleapis.com"

// GCS stores objects in a Google Cloud Storage bucket, which is what backs
// Firebase Storage.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS opens a bucket. credentialsFile may be empty to use application
// default credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload %s: %w", key, err)
	}
	return PublicURL(gcsPublicBase+"/"+g.bucket, key)
}

func (g *GCS) Delete(ctx context.Context, fileURL string) error {
	key, err := g.keyFromURL(fileURL)
	if err != nil {
		return err
	}
	err = g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// keyFromURL accepts both storage.googleapis.com URLs and Firebase download
// URLs (https://firebasestorage.googleapis.com/v0/b/<bucket>/o/<escaped key>?alt=media).
func (g *GCS) keyFromURL(fileURL string) (string, error) {
	if key, err := KeyFromURL(gcsPublicBase+"/"+g.bucket, fileURL); err == nil {
		return key, nil
	}
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownURL, err)
	}
	prefix := "/v0/b/" + g.bucket + "/o/"
	raw := u.EscapedPath()
	if u.Host != "firebasestorage.googleapis.com" || !strings.HasPrefix(raw, prefix) {
		return "", fmt.Errorf("%w: %s", ErrUnknownURL, fileURL)
	}
	key, err := url.PathUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil || key == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownURL, fileURL)
	}
	return key, nil
}
