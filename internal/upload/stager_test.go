package upload_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidstream/vidstream-api/internal/upload"
)

func multipartRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("username", "alice"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req
}

func TestStager_Stage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "temp")
	stager := upload.NewStager(dir, 1<<20)
	req := multipartRequest(t, map[string]string{"avatar": "avatar-bytes"})

	path, err := stager.Stage(req, "avatar")
	require.NoError(t, err)
	require.NotEmpty(t, path)

	assert.True(t, strings.HasPrefix(path, dir))
	assert.Equal(t, ".png", filepath.Ext(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "avatar-bytes", string(content))
}

func TestStager_MissingField(t *testing.T) {
	stager := upload.NewStager(t.TempDir(), 1<<20)
	req := multipartRequest(t, map[string]string{"avatar": "x"})

	path, err := stager.Stage(req, "coverImage")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestStager_UniqueNames(t *testing.T) {
	stager := upload.NewStager(t.TempDir(), 1<<20)
	req := multipartRequest(t, map[string]string{"avatar": "x"})

	first, err := stager.Stage(req, "avatar")
	require.NoError(t, err)
	second, err := stager.Stage(req, "avatar")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestStager_TooLarge(t *testing.T) {
	stager := upload.NewStager(t.TempDir(), 4)
	req := multipartRequest(t, map[string]string{"avatar": "way more than four bytes"})

	_, err := stager.Stage(req, "avatar")
	assert.ErrorIs(t, err, upload.ErrTooLarge)
}

func TestDiscard(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staged.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	upload.Discard(path, "", filepath.Join(dir, "missing.png"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
