package file

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abduss/photocat/internal/storeerr"
)

// RegisterRoutes mounts object operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/buckets/:bucket/objects", handler.listObjects)
	group.DELETE("/buckets/:bucket/objects/*key", handler.deleteObject)
	group.POST("/buckets/:bucket/copies", handler.copyObject)
}

type httpHandler struct {
	service *Service
}

type copyObjectRequest struct {
	Key         string `json:"key" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

func (h *httpHandler) listObjects(c *gin.Context) {
	objects, err := h.service.List(c.Request.Context(), c.Param("bucket"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"objects": objects})
}

func (h *httpHandler) deleteObject(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("bucket"), KeyParam(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) copyObject(c *gin.Context) {
	var req copyObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Copy(c.Request.Context(), c.Param("bucket"), req.Key, req.Destination); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bucket": req.Destination, "key": req.Key})
}

// KeyParam returns the object key captured by a trailing *key wildcard.
func KeyParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}

func respondError(c *gin.Context, err error) {
	c.JSON(storeerr.HTTPStatus(err), gin.H{"error": err.Error(), "kind": storeerr.Label(err)})
}
