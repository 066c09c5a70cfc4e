package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripsketch/tripsketch-backend/config"
	apperrors "github.com/tripsketch/tripsketch-backend/errors"
	"github.com/tripsketch/tripsketch-backend/logger"
)

const maxImageSize = 10 << 20 // 10 MiB per image

// Allowed types are decided by sniffing content, never by the client-supplied
// filename.
var allowedImageMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageService stores trip images in S3-compatible object storage and returns
// the public URLs persisted on the trip document.
type ImageService interface {
	// UploadTripImages uploads the given multipart files and returns their
	// public URLs, in input order.
	UploadTripImages(ctx context.Context, ownerEmail string, files []*multipart.FileHeader) ([]string, error)
}

type s3ImageService struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        *zap.SugaredLogger
}

// NewS3ImageService creates an image service backed by an S3-compatible
// endpoint (AWS S3, Cloudflare R2, MinIO).
func NewS3ImageService(cfg config.StorageConfig) ImageService {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		opts.BaseEndpoint = &endpoint
	}

	return &s3ImageService{
		client:        s3.New(opts),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		logger:        logger.GetLogger().Named("images"),
	}
}

// UploadTripImages validates and uploads each file. A rejected file fails the
// whole upload so a trip never references half a gallery.
func (s *s3ImageService) UploadTripImages(ctx context.Context, ownerEmail string, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))

	for _, fh := range files {
		if fh.Size > maxImageSize {
			return nil, apperrors.ValidationFailed("Image too large", fmt.Sprintf("%s exceeds the %d byte limit", fh.Filename, maxImageSize))
		}

		file, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}

		sniffBuf := make([]byte, 512)
		n, err := io.ReadFull(file, sniffBuf)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			file.Close()
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}

		detected := mimetype.Detect(sniffBuf[:n])
		if !allowedImageMimes[detected.String()] {
			file.Close()
			return nil, apperrors.ValidationFailed("Unsupported image type",
				fmt.Sprintf("MIME type %s is not allowed. Allowed: jpeg, png, gif, webp", detected.String()))
		}

		key := fmt.Sprintf("trips/%s/%d_%s%s",
			uuid.NewString(), time.Now().UnixMilli(), sanitizeBaseName(fh.Filename), detected.Extension())

		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &s.bucket,
			Key:    &key,
			Body:   io.MultiReader(bytes.NewReader(sniffBuf[:n]), file),
		})
		file.Close()
		if err != nil {
			s.logger.Errorw("Image upload failed",
				"key", key,
				"owner", logger.MaskEmail(ownerEmail),
				"error", err)
			return nil, fmt.Errorf("s3 put object failed: %w", err)
		}

		urls = append(urls, fmt.Sprintf("%s/%s", s.publicBaseURL, key))
	}

	return urls, nil
}

// sanitizeBaseName strips the extension and any path or traversal segments
// from an uploaded filename before it becomes part of a storage key.
func sanitizeBaseName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "..", "")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" {
		base = "image"
	}
	return base
}
