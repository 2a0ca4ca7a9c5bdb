package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Image upload limits.
const (
	DefaultMaxImageBytes int64 = 10 * 1024 * 1024
	DefaultConcurrency         = 4
)

// AllowedImageExtensions lists the accepted image formats, lower case.
var AllowedImageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

// Upload validation errors.
var (
	ErrImageTooLarge     = errors.New("image too large")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// File is one image handed to UploadImages.
type File struct {
	Name string
	Data []byte
}

// UploadResult is the outcome for one file of a batch.
type UploadResult struct {
	Name string // original file name
	URL  string // asset:// locator on success
	Err  error
}

// Uploader validates images and stores them under generated names.
type Uploader struct {
	writer      *Writer
	maxBytes    int64
	concurrency int
	newName     func() string
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithMaxBytes sets the largest accepted image size.
func WithMaxBytes(n int64) UploaderOption {
	return func(u *Uploader) {
		if n > 0 {
			u.maxBytes = n
		}
	}
}

// WithConcurrency bounds the number of parallel writes in UploadImages.
func WithConcurrency(n int) UploaderOption {
	return func(u *Uploader) {
		if n > 0 {
			u.concurrency = n
		}
	}
}

// NewUploader creates an Uploader that saves through w.
func NewUploader(w *Writer, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		writer:      w,
		maxBytes:    DefaultMaxImageBytes,
		concurrency: DefaultConcurrency,
		newName:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UploadImage validates data as an image named name and saves it into the
// vault under a random name that keeps the (lower-cased) extension.
func (u *Uploader) UploadImage(vaultRoot, name string, data []byte) (string, error) {
	if int64(len(data)) > u.maxBytes {
		return "", fmt.Errorf("%w: %s is %.1fMB, limit is %.1fMB",
			ErrImageTooLarge, name, megabytes(int64(len(data))), megabytes(u.maxBytes))
	}

	ext, ok := imageExtension(name)
	if !ok {
		return "", fmt.Errorf("%w: %s (supported: %s)",
			ErrUnsupportedFormat, name, strings.Join(AllowedImageExtensions, ", "))
	}

	return u.writer.Save(u.newName()+"."+ext, data, vaultRoot)
}

// UploadImages uploads files concurrently and returns one result per file,
// in input order. A failed file does not stop the others; a cancelled
// context marks the files not yet started as failed.
func (u *Uploader) UploadImages(ctx context.Context, vaultRoot string, files []File) []UploadResult {
	results := make([]UploadResult, len(files))

	g := new(errgroup.Group)
	g.SetLimit(u.concurrency)

	for i, f := range files {
		results[i].Name = f.Name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].URL, results[i].Err = u.UploadImage(vaultRoot, f.Name, f.Data)
			return nil
		})
	}

	// Per-file errors live in results; Wait never fails
	_ = g.Wait()
	return results
}

// imageExtension returns the lower-cased extension of name if it is an
// accepted image format.
func imageExtension(name string) (string, bool) {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 || dot == len(name)-1 {
		return "", false
	}
	ext := strings.ToLower(name[dot+1:])
	for _, allowed := range AllowedImageExtensions {
		if ext == allowed {
			return ext, true
		}
	}
	return "", false
}

func megabytes(n int64) float64 {
	return float64(n) / 1024 / 1024
}
