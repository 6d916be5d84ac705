package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/rembed"
	"github.com/soundprediction/rembed/pkg/server/dto"
	"github.com/soundprediction/rembed/pkg/types"
)

// EmbedHandler handles client registration and embedding requests
type EmbedHandler struct {
	embedder rembed.Embedder
	logger   *slog.Logger
}

// NewEmbedHandler creates a new embed handler
func NewEmbedHandler(e rembed.Embedder, logger *slog.Logger) *EmbedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbedHandler{
		embedder: e,
		logger:   logger,
	}
}

// RegisterClient handles POST /api/v1/clients
func (h *EmbedHandler) RegisterClient(c *gin.Context) {
	var req dto.RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(c, err.Error())
		return
	}

	if err := h.embedder.Register(req.Name, req.Config); err != nil {
		writeError(c, err)
		return
	}

	for _, d := range h.embedder.Clients() {
		if d.Name == req.Name {
			c.JSON(http.StatusCreated, d)
			return
		}
	}
	c.Status(http.StatusCreated)
}

// ListClients handles GET /api/v1/clients
func (h *EmbedHandler) ListClients(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ClientsResponse{Clients: h.embedder.Clients()})
}

// EmbedText handles POST /api/v1/embed
func (h *EmbedHandler) EmbedText(c *gin.Context) {
	var req dto.EmbedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err.Error())
		return
	}

	vec, err := h.embedder.EmbedText(withClient(c, req.Client), req.Client, req.Text)
	if err != nil {
		h.logFailure(c, req.Client, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEmbeddingResponse(req.Client, vec))
}

// EmbedImage handles POST /api/v1/embed/image
func (h *EmbedHandler) EmbedImage(c *gin.Context) {
	var req dto.EmbedImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err.Error())
		return
	}

	vec, err := h.embedder.EmbedImage(withClient(c, req.Client), req.Client, req.Image, req.Prompt)
	if err != nil {
		h.logFailure(c, req.Client, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEmbeddingResponse(req.Client, vec))
}

// EmbedBatch handles POST /api/v1/embed/batch
func (h *EmbedHandler) EmbedBatch(c *gin.Context) {
	var req dto.EmbedBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err.Error())
		return
	}

	res, err := h.embedder.EmbedBatch(withClient(c, req.Client), req.Client, req.Texts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBatchResponse(res))
}

// EmbedImagesBatch handles POST /api/v1/embed/images/batch
func (h *EmbedHandler) EmbedImagesBatch(c *gin.Context) {
	var req dto.EmbedImagesBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err.Error())
		return
	}

	res, err := h.embedder.EmbedImagesBatchWithPrompt(withClient(c, req.Client), req.Client, req.Images, req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBatchResponse(res))
}

func (h *EmbedHandler) logFailure(c *gin.Context, client string, err error) {
	if statusForError(err) < http.StatusInternalServerError {
		return
	}
	h.logger.ErrorContext(c.Request.Context(), "embedding request failed",
		"client", client,
		"path", c.FullPath(),
		"error", err)
}

func withClient(c *gin.Context, client string) context.Context {
	return context.WithValue(c.Request.Context(), types.ContextKeyClientName, client)
}
