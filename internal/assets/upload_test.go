package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadImage(t *testing.T) {
	vault := t.TempDir()
	u := NewUploader(NewWriter(nil))

	url, err := u.UploadImage(vault, "Screenshot.PNG", []byte("png"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, URLPrefix))
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	name := strings.TrimPrefix(url, URLPrefix)
	got, err := os.ReadFile(filepath.Join(Dir(vault), name))
	require.NoError(t, err)
	assert.Equal(t, "png", string(got))
}

func TestUploadImage_GeneratedNamesAreUnique(t *testing.T) {
	vault := t.TempDir()
	u := NewUploader(NewWriter(nil))

	first, err := u.UploadImage(vault, "same.jpg", []byte("1"))
	require.NoError(t, err)
	second, err := u.UploadImage(vault, "same.jpg", []byte("2"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestUploadImage_Validation(t *testing.T) {
	vault := t.TempDir()
	u := NewUploader(NewWriter(nil), WithMaxBytes(8))

	tests := []struct {
		name    string
		file    string
		size    int
		wantErr error
	}{
		{"at limit", "ok.webp", 8, nil},
		{"too large", "big.png", 9, ErrImageTooLarge},
		{"unsupported", "doc.pdf", 1, ErrUnsupportedFormat},
		{"no extension", "png", 1, ErrUnsupportedFormat},
		{"trailing dot", "image.", 1, ErrUnsupportedFormat},
		{"upper case", "PHOTO.JPEG", 1, nil},
		{"gif", "a.b.gif", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.UploadImage(vault, tt.file, make([]byte, tt.size))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUploadImages(t *testing.T) {
	vault := t.TempDir()

	var counter int64
	u := NewUploader(NewWriter(nil), WithConcurrency(2), WithMaxBytes(4))
	u.newName = func() string {
		return fmt.Sprintf("img-%d", atomic.AddInt64(&counter, 1))
	}

	files := []File{
		{Name: "a.png", Data: []byte("a")},
		{Name: "notes.txt", Data: []byte("b")},
		{Name: "c.gif", Data: []byte("toolarge")},
		{Name: "d.jpg", Data: []byte("d")},
	}

	results := u.UploadImages(context.Background(), vault, files)
	require.Len(t, results, len(files))

	for i, f := range files {
		assert.Equal(t, f.Name, results[i].Name, "results keep input order")
	}
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrUnsupportedFormat)
	assert.ErrorIs(t, results[2].Err, ErrImageTooLarge)
	assert.NoError(t, results[3].Err)
	assert.True(t, strings.HasSuffix(results[3].URL, ".jpg"))

	entries, err := os.ReadDir(Dir(vault))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestUploadImages_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewUploader(NewWriter(nil)).UploadImages(ctx, t.TempDir(), []File{{Name: "a.png", Data: []byte("a")}})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
