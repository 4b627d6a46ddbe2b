package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abduss/photocat/internal/catalog"
	"github.com/abduss/photocat/internal/file"
	"github.com/abduss/photocat/internal/storeerr"
)

const maxUploadBytes = 64 << 20

type catalogHandler struct {
	coordinator *catalog.Coordinator
	handlers    map[catalog.Command]catalog.Handler
}

func registerCatalogRoutes(group *gin.RouterGroup, coordinator *catalog.Coordinator) {
	h := &catalogHandler{coordinator: coordinator, handlers: coordinator.Handlers()}
	group.POST("/commands/:letter", h.runCommand)
	group.PUT("/buckets/:bucket/objects/*key", h.uploadObject)
	group.GET("/photos/:number", h.findPhotos)
}

// runCommand executes a menu command with answers taken from the JSON body,
// keyed by field name, and returns everything the command showed.
func (h *catalogHandler) runCommand(c *gin.Context) {
	cmd, err := catalog.ParseCommand(c.Param("letter"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	handler, ok := h.handlers[cmd]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command is only available in the interactive menu"})
		return
	}

	answers := map[string]string{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&answers); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	preset := catalog.NewPreset(answers)
	if err := handler(c.Request.Context(), preset); err != nil {
		c.JSON(storeerr.HTTPStatus(err), gin.H{
			"command":    cmd.String(),
			"error":      err.Error(),
			"kind":       storeerr.Label(err),
			"transcript": preset.Transcript(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"command":    cmd.String(),
		"transcript": preset.Transcript(),
	})
}

func (h *catalogHandler) uploadObject(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	obj, err := h.coordinator.StorePayload(c.Request.Context(), c.Param("bucket"), file.KeyParam(c), data)
	if err != nil {
		c.JSON(storeerr.HTTPStatus(err), gin.H{"error": err.Error(), "kind": storeerr.Label(err)})
		return
	}

	c.JSON(http.StatusCreated, obj)
}

func (h *catalogHandler) findPhotos(c *gin.Context) {
	records, err := h.coordinator.FindRecords(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.JSON(storeerr.HTTPStatus(err), gin.H{"error": err.Error(), "kind": storeerr.Label(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"found": len(records) > 0, "records": records})
}
