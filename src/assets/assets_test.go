package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "cool_filename.txt.wow", SanitizeFilename("cool filename.txt.wow"))
	assert.Equal(t, "poster_2024_.pdf", SanitizeFilename("poster(2024).pdf"))
	assert.Equal(t, "newlines_are_illegal", SanitizeFilename("newlines\nare\tillegal"))
	assert.Equal(t, "unnamed", SanitizeFilename("   "))
}

func TestAssetKey(t *testing.T) {
	assert.Equal(t, "abc/poster.png", AssetKey("abc", "poster.png"))
}

func TestImageDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 18))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.Nil(t, png.Encode(&buf, img))

	w, h := ImageDimensions(buf.Bytes())
	assert.Equal(t, 32, w)
	assert.Equal(t, 18, h)

	w, h = ImageDimensions([]byte("%PDF-1.4 not an image"))
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)
}

type fakeStore struct {
	putErrors     []error
	puts          int
	bucketCreated bool
	lastBody      []byte
}

func (s *fakeStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.puts++
	if len(s.putErrors) > 0 {
		err := s.putErrors[0]
		s.putErrors = s.putErrors[1:]
		return nil, err
	}
	s.lastBody, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func (s *fakeStore) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	s.bucketCreated = true
	return &s3.CreateBucketOutput{}, nil
}

func (s *fakeStore) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return &s3.DeleteObjectOutput{}, nil
}

func withFakeStore(t *testing.T, store *fakeStore) {
	old := client
	client = store
	t.Cleanup(func() { client = old })
}

func TestUploadObject(t *testing.T) {
	ctx := context.Background()

	t.Run("first try", func(t *testing.T) {
		store := &fakeStore{}
		withFakeStore(t, store)

		require.Nil(t, uploadObject(ctx, "k", []byte("hello"), "text/plain"))
		assert.Equal(t, 1, store.puts)
		assert.Equal(t, []byte("hello"), store.lastBody)
	})
	t.Run("creates missing bucket", func(t *testing.T) {
		store := &fakeStore{putErrors: []error{
			&smithy.GenericAPIError{Code: "NoSuchBucket", Fault: smithy.FaultClient},
		}}
		withFakeStore(t, store)

		require.Nil(t, uploadObject(ctx, "k", []byte("hello"), "text/plain"))
		assert.True(t, store.bucketCreated)
		assert.Equal(t, 2, store.puts)
	})
	t.Run("retries server faults", func(t *testing.T) {
		store := &fakeStore{putErrors: []error{
			&smithy.GenericAPIError{Code: "InternalError", Fault: smithy.FaultServer},
			errors.New("connection reset by peer"),
		}}
		withFakeStore(t, store)

		require.Nil(t, uploadObject(ctx, "k", []byte("hello"), "text/plain"))
		assert.Equal(t, 3, store.puts)
	})
	t.Run("does not retry client errors", func(t *testing.T) {
		store := &fakeStore{putErrors: []error{
			&smithy.GenericAPIError{Code: "AccessDenied", Fault: smithy.FaultClient},
		}}
		withFakeStore(t, store)

		err := uploadObject(ctx, "k", []byte("hello"), "text/plain")
		assert.NotNil(t, err)
		assert.Equal(t, 1, store.puts)
	})
	t.Run("gives up eventually", func(t *testing.T) {
		var errs []error
		for i := 0; i < maxUploadAttempts+2; i++ {
			errs = append(errs, errors.New("timeout"))
		}
		store := &fakeStore{putErrors: errs}
		withFakeStore(t, store)

		err := uploadObject(ctx, "k", []byte("hello"), "text/plain")
		assert.ErrorContains(t, err, "timeout")
		assert.Equal(t, maxUploadAttempts, store.puts)
	})
}

func TestCreateValidation(t *testing.T) {
	_, err := Create(context.Background(), nil, CreateInput{Filename: "empty.txt"})
	var invalid InvalidAssetError
	assert.True(t, errors.As(err, &invalid))

	_, err = Create(context.Background(), nil, CreateInput{Filename: "huge.bin", Content: make([]byte, MaxUploadSize+1)})
	assert.True(t, errors.As(err, &invalid))
}
