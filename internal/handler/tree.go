package handler

import (
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/CageChen/anydir"
	"github.com/CageChen/anydir/internal/config"
)

// EntryNode describes one file entry
type EntryNode struct {
	Path         string `json:"path"`
	Kind         string `json:"kind"`
	AbsolutePath string `json:"absolutePath,omitempty"`
}

// LayerNode describes one directory of the overlay and its entries
type LayerNode struct {
	Kind    string      `json:"kind"`
	Path    string      `json:"path"`
	Entries []EntryNode `json:"entries"`
}

// EntriesResponse is the response of the listing API
type EntriesResponse struct {
	Layers []LayerNode `json:"layers"`
	Merged []EntryNode `json:"merged"`
}

// ListHandler handles directory listing and layer management API requests
type ListHandler struct {
	mu      sync.Mutex
	cfg     *config.Config
	overlay *anydir.Overlay
}

// NewListHandler creates a new list handler
func NewListHandler(cfg *config.Config, overlay *anydir.Overlay) *ListHandler {
	return &ListHandler{cfg: cfg, overlay: overlay}
}

// GetEntries lists the files of every layer and the merged view clients see
func (h *ListHandler) GetEntries(c *gin.Context) {
	resp := EntriesResponse{
		Layers: []LayerNode{},
		Merged: entryNodes(h.overlay.FileEntries()),
	}

	for _, layer := range h.overlay.Layers() {
		node := LayerNode{
			Kind:    layer.Kind().String(),
			Entries: entryNodes(layer.FileEntries()),
		}
		if ct, ok := layer.Ct(); ok {
			node.Path = ct.Path()
		}
		if rt, ok := layer.Rt(); ok {
			node.Path = rt.Path()
		}
		resp.Layers = append(resp.Layers, node)
	}

	c.JSON(http.StatusOK, resp)
}

func entryNodes(entries []anydir.AnyFileEntry) []EntryNode {
	nodes := make([]EntryNode, 0, len(entries))
	for _, e := range entries {
		node := EntryNode{
			Path: e.Path(),
			Kind: e.Kind().String(),
		}
		if abs, ok := e.AbsolutePath(); ok {
			node.AbsolutePath = abs
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// GetLayers returns the configured layers
func (h *ListHandler) GetLayers(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"overlay": h.cfg.Overlay,
		"layers":  h.cfg.Layers,
	})
}

// AddLayerRequest represents the request body for adding a layer
type AddLayerRequest struct {
	Kind anydir.Kind `json:"kind"`
	Path string      `json:"path" binding:"required"`
}

// AddLayer appends a layer below the configured ones and serves it right away
func (h *ListHandler) AddLayer(c *gin.Context) {
	var req AddLayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "kind and path are required",
		})
		return
	}

	switch req.Kind {
	case anydir.KindRt:
		info, err := os.Stat(req.Path)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "path does not exist: " + req.Path,
			})
			return
		}
		if !info.IsDir() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "path is not a directory",
			})
			return
		}
	case anydir.KindCt:
		if _, ok := anydir.Lookup(req.Path); !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "directory not embedded: " + req.Path,
			})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "kind must be ct or rt",
		})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.cfg.AddLayer(req.Kind, req.Path); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	h.commit(c, "layer added")
}

// RemoveLayerRequest represents the request body for removing a layer
type RemoveLayerRequest struct {
	Index int `json:"index"`
}

// RemoveLayer removes a layer from the configuration by index
func (h *ListHandler) RemoveLayer(c *gin.Context) {
	var req RemoveLayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "index is required",
		})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if req.Index < 0 || req.Index >= len(h.cfg.Layers) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid layer index",
		})
		return
	}

	h.cfg.RemoveLayerByIndex(req.Index)

	h.commit(c, "layer removed")
}

// commit saves the configuration and swaps the served layers. h.mu must be
// held.
func (h *ListHandler) commit(c *gin.Context, message string) {
	if err := h.cfg.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to save config: " + err.Error(),
		})
		return
	}

	dirs, err := h.cfg.Dirs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to open layers: " + err.Error(),
		})
		return
	}

	h.overlay.SetLayers(dirs...)

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"layers":  h.cfg.Layers,
	})
}
