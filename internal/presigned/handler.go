package presigned

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abduss/photocat/internal/storeerr"
)

type Handler struct {
	presignedService *Service
}

func NewHandler(ps *Service) *Handler {
	return &Handler{presignedService: ps}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/links/:bucket/*key", h.GeneratePresignedURL)
}

func (h *Handler) GeneratePresignedURL(c *gin.Context) {
	bucket := c.Param("bucket")
	key := strings.TrimPrefix(c.Param("key"), "/")
	method := strings.ToUpper(c.DefaultQuery("method", http.MethodGet))

	var ttl time.Duration
	if ttlParam := c.Query("ttl"); ttlParam != "" {
		parsed, err := time.ParseDuration(ttlParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ttl"})
			return
		}
		ttl = parsed
	}

	var (
		link Link
		err  error
	)
	switch method {
	case http.MethodGet:
		link, err = h.presignedService.GenerateGetURL(c.Request.Context(), bucket, key, ttl)
	case http.MethodPut:
		link, err = h.presignedService.GeneratePutURL(c.Request.Context(), bucket, key, ttl)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "method must be GET or PUT"})
		return
	}
	if err != nil {
		c.JSON(storeerr.HTTPStatus(err), gin.H{"error": err.Error(), "kind": storeerr.Label(err)})
		return
	}

	c.JSON(http.StatusOK, link)
}
