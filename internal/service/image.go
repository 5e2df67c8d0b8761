package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/pageza/recipe-app/backend/config"
)

// RecipeImageDir is the key prefix under which recipe images are stored.
const RecipeImageDir = "uploads/recipe"

// Upper bounds on the declared size of an uploaded image, checked before any
// pixel data is decoded.
const (
	MaxImageDimension = 8000
	MaxImagePixels    = 24_000_000
)

// ErrImageTooLarge is returned by DecodeImage for images over the size limits.
var ErrImageTooLarge = errors.New("image dimensions too large")

// ImageStorage persists image bytes under a key and returns the reference
// stored on the recipe. Delete removes a key; a missing key is not an error.
type ImageStorage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// DecodedImage describes an uploaded payload that decoded successfully.
type DecodedImage struct {
	Format      string
	ContentType string
	Width       int
	Height      int
}

// DecodeImage checks the declared dimensions of data against the size
// limits, then fully decodes it and reports its format.
func DecodeImage(data []byte) (*DecodedImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension ||
		int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	return &DecodedImage{
		Format:      format,
		ContentType: "image/" + format,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

// RecipeImageKey returns a fresh storage key for an uploaded file. The
// extension of the original filename is kept; files without one get the
// extension of their decoded format.
func RecipeImageKey(filename, format string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = "." + format
		if format == "jpeg" {
			ext = ".jpg"
		}
	}
	return path.Join(RecipeImageDir, uuid.NewString()+ext)
}

// LocalStorage writes images below a directory served at baseURL.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL}
}

func (s *LocalStorage) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return s.baseURL + key, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// S3Storage uploads images to a bucket and returns their public URL.
type S3Storage struct {
	cfg *config.S3Config
}

func NewS3Storage(cfg *config.S3Config) *S3Storage {
	return &S3Storage{cfg: cfg}
}

func (s *S3Storage) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      s.cfg.Bucket(),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.cfg.ObjectURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.cfg.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.cfg.Bucket(),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// NewImageStorage builds the storage backend selected in cfg.
func NewImageStorage(ctx context.Context, cfg *config.Config) (ImageStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Storage(s3cfg), nil
	default:
		return NewLocalStorage(cfg.MediaRoot, cfg.MediaURL), nil
	}
}
