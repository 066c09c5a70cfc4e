package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsketch/tripsketch-backend/config"
	apperrors "github.com/tripsketch/tripsketch-backend/errors"
)

func testImageService() ImageService {
	return NewS3ImageService(config.StorageConfig{
		Endpoint:        "https://storage.example.com",
		Region:          "auto",
		Bucket:          "tripsketch-test",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		PublicBaseURL:   "https://img.example.com/",
	})
}

// uploadFileHeader builds a real multipart.FileHeader from in-memory content.
func uploadFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("images", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	files := form.File["images"]
	require.Len(t, files, 1)
	return files[0]
}

func TestUploadTripImages_RejectsNonImageContent(t *testing.T) {
	svc := testImageService()

	// An image extension must not get a script past content sniffing.
	fh := uploadFileHeader(t, "evil.jpg", []byte("#!/bin/sh\nrm -rf /\n"))

	urls, err := svc.UploadTripImages(context.Background(), testOwnerEmail, []*multipart.FileHeader{fh})

	require.Error(t, err)
	assert.Nil(t, urls)
	assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
	assert.Contains(t, err.Error(), "not allowed")
}

func TestUploadTripImages_RejectsEmptyFile(t *testing.T) {
	svc := testImageService()
	fh := uploadFileHeader(t, "blank.png", nil)

	_, err := svc.UploadTripImages(context.Background(), testOwnerEmail, []*multipart.FileHeader{fh})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
}

func TestUploadTripImages_RejectsOversizedImage(t *testing.T) {
	svc := testImageService()
	fh := uploadFileHeader(t, "big.jpg", make([]byte, maxImageSize+1))

	_, err := svc.UploadTripImages(context.Background(), testOwnerEmail, []*multipart.FileHeader{fh})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
	assert.Contains(t, err.Error(), "byte limit")
}

func TestSanitizeBaseName(t *testing.T) {
	cases := map[string]string{
		"beach.jpg":          "beach",
		"../../etc/passwd":   "passwd",
		"my photo (1).png":   "my-photo--1-",
		".jpg":               "image",
		"한라산.jpeg":           "---",
		"snake_case-ok.webp": "snake_case-ok",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeBaseName(in), "input %q", in)
	}
}
