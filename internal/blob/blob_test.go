package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURLRoundTrip(t *testing.T) {
	key := "study-files/user-1/1700000000000_notes page.png"
	u, err := PublicURL("https://pub-123.r2.dev", key)
	require.NoError(t, err)
	assert.Equal(t, "https://pub-123.r2.dev/study-files/user-1/1700000000000_notes%20page.png", u)

	got, err := KeyFromURL("https://pub-123.r2.dev", u)
	require.NoError(t, err)
	assert.Equal(t, key, got)

	u, err = PublicURL("https://storage.googleapis.com/my-bucket/", "a/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/my-bucket/a/b.pdf", u)
	got, err = KeyFromURL("https://storage.googleapis.com/my-bucket", u)
	require.NoError(t, err)
	assert.Equal(t, "a/b.pdf", got)
}

func TestKeyFromURLRejectsForeignURLs(t *testing.T) {
	for _, u := range []string{
		"https://example.com/study-files/x.png",
		"https://storage.googleapis.com/other-bucket/x.png",
		"https://storage.googleapis.com/my-bucket/",
		"://bad",
	} {
		_, err := KeyFromURL("https://storage.googleapis.com/my-bucket", u)
		assert.ErrorIs(t, err, ErrUnknownURL, u)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory("http://files.local")
	ctx := context.Background()

	u, err := m.Upload(ctx, "k/one.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	data, ok := m.Object("k/one.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, m.Delete(ctx, u))
	assert.Zero(t, m.Len())
	assert.Error(t, m.Delete(ctx, u))
}

type fakeS3 struct {
	put    *s3.PutObjectInput
	body   string
	del    *s3.DeleteObjectInput
	failOn string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failOn == "put" {
		return nil, errors.New("access denied")
	}
	b, _ := io.ReadAll(in.Body)
	f.put, f.body = in, string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.failOn == "delete" {
		return nil, errors.New("access denied")
	}
	f.del = in
	return &s3.DeleteObjectOutput{}, nil
}

func TestR2UploadAndDelete(t *testing.T) {
	fake := &fakeS3{}
	c := &R2{s3Client: fake, bucketName: "study", publicURL: "https://pub-123.r2.dev"}
	ctx := context.Background()

	u, err := c.Upload(ctx, "study-files/u/1_a.png", "", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "https://pub-123.r2.dev/study-files/u/1_a.png", u)
	assert.Equal(t, "study", *fake.put.Bucket)
	assert.Equal(t, "application/octet-stream", *fake.put.ContentType)
	assert.Equal(t, types.ObjectCannedACLPublicRead, fake.put.ACL)
	assert.Equal(t, "img", fake.body)

	require.NoError(t, c.Delete(ctx, u))
	assert.Equal(t, "study-files/u/1_a.png", *fake.del.Key)

	assert.ErrorIs(t, c.Delete(ctx, "https://elsewhere.dev/x"), ErrUnknownURL)

	fake.failOn = "put"
	_, err = c.Upload(ctx, "k", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestGCSKeyFromURL(t *testing.T) {
	g := &GCS{bucket: "tnpsc.appspot.com"}

	key, err := g.keyFromURL("https://storage.googleapis.com/tnpsc.appspot.com/study-files/u/1_a.png")
	require.NoError(t, err)
	assert.Equal(t, "study-files/u/1_a.png", key)

	key, err = g.keyFromURL("https://firebasestorage.googleapis.com/v0/b/tnpsc.appspot.com/o/study-files%2Fu%2F1_a%20b.png?alt=media&token=abc")
	require.NoError(t, err)
	assert.Equal(t, "study-files/u/1_a b.png", key)

	_, err = g.keyFromURL("https://firebasestorage.googleapis.com/v0/b/other/o/x.png")
	assert.ErrorIs(t, err, ErrUnknownURL)
}
