package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/CageChen/anydir"
	"github.com/CageChen/anydir/internal/config"
)

// The embedded web directory matches the on-disk one it was built from.
func TestEmbeddedWeb(t *testing.T) {
	ct := anydir.MustNew(anydir.KindCt, "web")
	rt := anydir.Rt("web")

	d, ok := ct.Ct()
	require.True(t, ok)
	assert.Equal(t, DIR_WEB, d)

	ctEntries := ct.FileEntries()
	rtEntries := rt.FileEntries()
	require.NotEmpty(t, ctEntries)

	rtContent := make(map[string][]byte)
	for _, e := range rtEntries {
		b, err := e.ReadBytes()
		require.NoError(t, err)
		rtContent[e.Path()] = b
	}

	require.Len(t, rtContent, len(ctEntries))

	for _, e := range ctEntries {
		b, err := e.ReadBytes()
		require.NoError(t, err)
		assert.Equal(t, rtContent[e.Path()], b, e.Path())
	}
}

func TestRouter(t *testing.T) {
	dir := t.TempDir()
	big := strings.Repeat("all work and no play\n", 200)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.txt"), []byte(big), 0o644))

	cfg := config.DefaultConfig()
	overlay := anydir.NewOverlay(anydir.Rt(dir), anydir.Ct(DIR_WEB))
	r := newRouter(cfg, overlay, zaptest.NewLogger(t))

	t.Run("index", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<title>anydir</title>")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("gzip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/raw/big.txt", nil)
		req.Header.Set("Accept-Encoding", "gzip")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

		zr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)

		b, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, big, string(b))
	})

	t.Run("options", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/entries", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRunShutdown(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, run(ctx, srv))
}
