package bucket

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abduss/photocat/internal/storeerr"
)

// RegisterRoutes mounts bucket endpoints onto the router.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/buckets", handler.createBucket)
	group.GET("/buckets", handler.listBuckets)
	group.DELETE("/buckets/:bucket", handler.deleteBucket)
}

type httpHandler struct {
	service *Service
}

type createBucketRequest struct {
	Name string `json:"name" binding:"required,max=48"`
}

func (h *httpHandler) createBucket(c *gin.Context) {
	var req createBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bucket, err := h.service.CreateBucket(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bucket)
}

func (h *httpHandler) listBuckets(c *gin.Context) {
	buckets, err := h.service.ListBuckets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}

func (h *httpHandler) deleteBucket(c *gin.Context) {
	if err := h.service.DeleteBucket(c.Request.Context(), c.Param("bucket")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, err error) {
	c.JSON(storeerr.HTTPStatus(err), gin.H{"error": err.Error(), "kind": storeerr.Label(err)})
}
