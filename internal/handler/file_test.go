package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/CageChen/anydir"
	"github.com/CageChen/anydir/internal/config"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	web, err := anydir.NewCtDir(embedded, "web")
	if err != nil {
		panic(err)
	}
	anydir.Register("github.com/CageChen/anydir/internal/handler:web", web)

	goleak.VerifyTestMain(m)
}

var embedded = fstest.MapFS{
	"web/index.html": &fstest.MapFile{Data: []byte("<p>embedded</p>")},
	"web/style.css":  &fstest.MapFile{Data: []byte("body {  color : red ; }")},
	"web/README.md":  &fstest.MapFile{Data: []byte("# Read me\n\nHello.\n")},
	"web/bad.md":     &fstest.MapFile{Data: []byte{'#', ' ', 0xff, 0xfe}},
	"web/data":       &fstest.MapFile{Data: []byte("%PDF-1.4\n")},
	"web/sub/x.txt":  &fstest.MapFile{Data: []byte("x")},
}

// setupRouter serves an overlay of a runtime directory above the embedded
// test tree.
func setupRouter(t *testing.T, cfg *config.Config) (*gin.Engine, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>overlay</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# Notes\n"), 0o644))

	ct, err := anydir.NewCtDir(embedded, "web")
	require.NoError(t, err)

	overlay := anydir.NewOverlay(anydir.Rt(dir), anydir.Ct(ct))

	r := gin.New()
	NewFileHandler(cfg, overlay, zaptest.NewLogger(t)).Mount(r, NewListHandler(cfg, overlay))

	return r, dir
}

func get(r http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestGetRaw(t *testing.T) {
	r, _ := setupRouter(t, config.DefaultConfig())

	w := get(r, "/api/raw/style.css")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body {  color : red ; }", w.Body.String())
	assert.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "ct", w.Header().Get("X-Anydir-Kind"))

	etag := w.Header().Get("ETag")
	assert.True(t, strings.HasPrefix(etag, `"sha256:`), etag)

	w = get(r, "/api/raw/style.css", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestGetRawShadowed(t *testing.T) {
	r, _ := setupRouter(t, config.DefaultConfig())

	w := get(r, "/api/raw/index.html")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>overlay</p>", w.Body.String())
	assert.Equal(t, "rt", w.Header().Get("X-Anydir-Kind"))
}

func TestGetRawSniffedType(t *testing.T) {
	r, _ := setupRouter(t, config.DefaultConfig())

	w := get(r, "/api/raw/data")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestGetRawErrors(t *testing.T) {
	r, _ := setupRouter(t, config.DefaultConfig())

	tests := []struct {
		target string
		status int
	}{
		{"/api/raw/missing.txt", http.StatusNotFound},
		{"/api/raw/sub", http.StatusBadRequest},
		{"/api/raw/", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := get(r, tt.target)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetRawMinify(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Minify = true
	r, _ := setupRouter(t, cfg)

	w := get(r, "/api/raw/style.css")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body{color:red}", w.Body.String())

	// No minifier for this type: served unchanged.
	w = get(r, "/api/raw/sub/x.txt")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "x", w.Body.String())
}

func TestGetView(t *testing.T) {
	r, _ := setupRouter(t, config.DefaultConfig())

	t.Run("embedded", func(t *testing.T) {
		w := get(r, "/api/view/README.md")
		require.Equal(t, http.StatusOK, w.Code)

		var resp ViewResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Read me", resp.Title)
		assert.Equal(t, "README.md", resp.Path)
		assert.Equal(t, "ct", resp.Kind)
		assert.Contains(t, resp.HTML, "<p>Hello.</p>")
	})

	t.Run("runtime", func(t *testing.T) {
		w := get(r, "/api/view/notes.md")
		require.Equal(t, http.StatusOK, w.Code)

		var resp ViewResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Notes", resp.Title)
		assert.Equal(t, "rt", resp.Kind)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		w := get(r, "/api/view/bad.md")
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("not markdown", func(t *testing.T) {
		w := get(r, "/api/view/style.css")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestServeAsset(t *testing.T) {
	r, dir := setupRouter(t, config.DefaultConfig())

	w := get(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>overlay</p>", w.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	// Removing the runtime file falls back to the embedded one.
	require.NoError(t, os.Remove(filepath.Join(dir, "index.html")))

	w = get(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>embedded</p>", w.Body.String())

	w = get(r, "/nope.js")
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/index.html", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServeAssetDirectory(t *testing.T) {
	r, _ := setupRouter(t, config.DefaultConfig())

	w := get(r, "/sub")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/sub/", w.Header().Get("Location"))

	w = get(r, "/sub?v=1")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/sub/?v=1", w.Header().Get("Location"))

	// No index entry in sub.
	w = get(r, "/sub/")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(r, "/sub/x.txt")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "x", w.Body.String())
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, http.StatusNotFound},
		{&fs.PathError{Op: "open", Path: "../x", Err: fs.ErrInvalid}, http.StatusBadRequest},
		{&fs.PathError{Op: "open", Path: "x", Err: anydir.ErrNotRegular}, http.StatusBadRequest},
		{&fs.PathError{Op: "read", Path: "x", Err: anydir.ErrInvalidData}, http.StatusUnsupportedMediaType},
		{&fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, http.StatusForbidden},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.err), func(t *testing.T) {
			status, msg := errorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, msg)
		})
	}
}
