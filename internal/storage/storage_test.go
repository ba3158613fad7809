package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFileHeader builds a multipart.FileHeader around the given content.
func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	ctx := context.Background()
	fh := newFileHeader(t, "crack.jpg", []byte("image-bytes"))

	key, err := store.Save(ctx, KindRequested, fh)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, KindRequested+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	// File exists on disk with the saved content
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)

	// URL joins base URL and key
	assert.Equal(t, "http://localhost:8080/uploads/"+key, store.GetURL(key))

	// Delete removes the file
	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_KindPrefixes(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	ctx := context.Background()
	for _, kind := range []string{KindRequested, KindRepaired, KindConfirmed, KindSignature} {
		fh := newFileHeader(t, "photo.png", []byte(kind))
		key, err := store.Save(ctx, kind, fh)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, kind+"/"))
	}
}

func TestLocalStorage_UniqueKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	ctx := context.Background()
	fh := newFileHeader(t, "same.jpg", []byte("a"))

	key1, err := store.Save(ctx, KindRepaired, fh)
	require.NoError(t, err)
	key2, err := store.Save(ctx, KindRepaired, fh)
	require.NoError(t, err)

	assert.NotEqual(t, key1, key2)
}
