package proxy

import (
	"context"
	"log"
	"net/http"

	"reid-dashboard/internal/titles"

	"github.com/gin-gonic/gin"
)

// Handler serves the same-origin page fetch endpoints
type Handler struct {
	fetcher  Fetcher
	renderer Fetcher
	loader   *titles.Loader
}

// NewHandler creates a proxy handler. renderer may be nil, which disables render=1.
func NewHandler(fetcher, renderer Fetcher, titleBatchSize int) *Handler {
	h := &Handler{fetcher: fetcher, renderer: renderer}
	h.loader = titles.NewLoader(h.fetchHTML, titleBatchSize)
	return h
}

// Loader returns the title loader backed by this proxy's fetcher
func (h *Handler) Loader() *titles.Loader {
	return h.loader
}

// Register mounts the proxy routes on an /api group
// Middleware in limit wraps the fetching routes only.
func (h *Handler) Register(api *gin.RouterGroup, limit ...gin.HandlerFunc) {
	api.GET("/proxy", chain(limit, h.Proxy)...)
	api.OPTIONS("/proxy", h.Preflight)
	api.GET("/titles", chain(limit, h.Title)...)
}

func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, h)
}

func setProxyCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// Preflight answers OPTIONS /api/proxy
func (h *Handler) Preflight(c *gin.Context) {
	setProxyCORS(c)
	c.Status(http.StatusOK)
}

// Proxy fetches the url query parameter and relays the upstream response
func (h *Handler) Proxy(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL parameter is required"})
		return
	}

	fetcher := h.fetcher
	if c.Query("render") == "1" && h.renderer != nil {
		fetcher = h.renderer
	}

	page, err := fetcher.Fetch(c.Request.Context(), target)
	setProxyCORS(c)
	if err != nil {
		log.Printf("[Proxy] Fetch %s failed: %v", target, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	contentType := page.ContentType
	if contentType == "" {
		contentType = "text/html"
	}
	c.Data(page.StatusCode, contentType, page.Body)
}

// Title fetches the url query parameter and returns its extracted title
func (h *Handler) Title(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL parameter is required"})
		return
	}
	c.JSON(http.StatusOK, h.loader.Load(c.Request.Context(), target))
}

func (h *Handler) fetchHTML(ctx context.Context, target string) (string, error) {
	return HTML(ctx, h.fetcher, target)
}
