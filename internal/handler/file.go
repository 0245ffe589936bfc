// Package handler provides HTTP handlers serving directory entries through an overlay.
package handler

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	digest "github.com/opencontainers/go-digest"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"
	"go.uber.org/zap"

	"github.com/CageChen/anydir"
	"github.com/CageChen/anydir/internal/config"
	"github.com/CageChen/anydir/internal/markdown"
)

// ViewResponse represents the response for a rendered markdown entry
type ViewResponse struct {
	Path  string             `json:"path"`
	Kind  string             `json:"kind"`
	Title string             `json:"title"`
	HTML  string             `json:"html"`
	TOC   []markdown.TOCItem `json:"toc"`
}

// FileHandler serves the content of overlay entries
type FileHandler struct {
	cfg      *config.Config
	overlay  *anydir.Overlay
	parser   *markdown.Parser
	minifier *minify.M
	log      *zap.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(cfg *config.Config, overlay *anydir.Overlay, log *zap.Logger) *FileHandler {
	h := &FileHandler{
		cfg:     cfg,
		overlay: overlay,
		parser:  markdown.NewParser(),
		log:     log,
	}

	if cfg.Minify {
		h.minifier = newMinifier()
	}

	return h
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`[/+]json$`), json.Minify)

	return m
}

// Mount registers the file, listing and layer routes on r
func (h *FileHandler) Mount(r *gin.Engine, list *ListHandler) {
	api := r.Group("/api")
	{
		api.GET("/entries", list.GetEntries)
		api.GET("/layers", list.GetLayers)
		api.POST("/layers", list.AddLayer)
		api.DELETE("/layers", list.RemoveLayer)
		api.GET("/raw/*path", h.GetRaw)
		api.GET("/view/*path", h.GetView)
	}

	r.NoRoute(h.ServeAsset)
}

// open resolves a request path to the topmost overlay entry
func (h *FileHandler) open(filePath string) (anydir.AnyFileEntry, error) {
	name := strings.TrimPrefix(filePath, "/")
	if name == "" {
		return anydir.AnyFileEntry{}, &anydir.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
	}

	return h.overlay.Open(name)
}

// errorStatus maps an entry error to a status code and client message
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound, "file not found"
	case errors.Is(err, fs.ErrInvalid):
		return http.StatusBadRequest, "invalid path"
	case errors.Is(err, anydir.ErrNotRegular):
		return http.StatusBadRequest, "path is a directory"
	case errors.Is(err, anydir.ErrInvalidData):
		return http.StatusUnsupportedMediaType, "file is not valid UTF-8"
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden, "access denied"
	default:
		return http.StatusInternalServerError, "failed to read file"
	}
}

func (h *FileHandler) fail(c *gin.Context, filePath string, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("read entry", zap.String("path", filePath), zap.Error(err))
	}

	c.JSON(status, gin.H{"error": msg})
}

// GetRaw returns the content of an entry
func (h *FileHandler) GetRaw(c *gin.Context) {
	filePath := c.Param("path")

	entry, err := h.open(filePath)
	if err != nil {
		h.fail(c, filePath, err)
		return
	}

	h.serve(c, entry)
}

// GetView returns the rendered HTML for a markdown entry
func (h *FileHandler) GetView(c *gin.Context) {
	filePath := c.Param("path")

	if !h.cfg.IsMarkdownFile(filePath) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "not a markdown file",
		})
		return
	}

	entry, err := h.open(filePath)
	if err != nil {
		h.fail(c, filePath, err)
		return
	}

	page, err := h.parser.Render(entry)
	if err != nil {
		h.fail(c, filePath, err)
		return
	}

	c.JSON(http.StatusOK, ViewResponse{
		Path:  entry.Path(),
		Kind:  entry.Kind().String(),
		Title: page.Title,
		HTML:  page.HTML,
		TOC:   page.TOC,
	})
}

// ServeAsset serves any other path straight from the overlay. Paths ending in
// "/" serve the index entry of that directory, directories without the slash
// are redirected to it.
func (h *FileHandler) ServeAsset(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusMethodNotAllowed)
		return
	}

	filePath := c.Request.URL.Path
	if strings.HasSuffix(filePath, "/") {
		filePath += h.cfg.Index
	}

	entry, err := h.open(filePath)
	if errors.Is(err, anydir.ErrNotRegular) {
		target := filePath + "/"
		if c.Request.URL.RawQuery != "" {
			target += "?" + c.Request.URL.RawQuery
		}
		c.Redirect(http.StatusMovedPermanently, target)
		return
	}

	if err != nil {
		status, _ := errorStatus(err)
		c.String(status, http.StatusText(status))
		return
	}

	h.serve(c, entry)
}

func (h *FileHandler) serve(c *gin.Context, entry anydir.AnyFileEntry) {
	content, err := entry.ReadBytes()
	if err != nil {
		h.fail(c, entry.Path(), err)
		return
	}

	etag := `"` + digest.FromBytes(content).String() + `"`
	c.Header("ETag", etag)
	c.Header("X-Anydir-Kind", entry.Kind().String())

	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(entry.Path()))
	if contentType == "" {
		contentType = mimetype.Detect(content).String()
	}

	if h.minifier != nil {
		minified, err := h.minifier.Bytes(contentType, content)
		switch {
		case err == nil:
			content = minified
		case !errors.Is(err, minify.ErrNotExist):
			h.log.Warn("minify", zap.String("path", entry.Path()), zap.Error(err))
		}
	}

	c.Data(http.StatusOK, contentType, content)
}
