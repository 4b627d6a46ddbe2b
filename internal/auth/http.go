package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts token endpoints under /auth. The group must already
// run AuthMiddleware.
func RegisterRoutes(router *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/refresh", handler.refresh)
		authGroup.GET("/whoami", handler.whoami)
	}
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) refresh(c *gin.Context) {
	claims, ok := CurrentOperator(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	token, err := h.service.Issue(claims.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, token)
}

func (h *httpHandler) whoami(c *gin.Context) {
	claims, ok := CurrentOperator(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"operator": claims.Subject, "expires_at": claims.ExpiresAt})
}
