package api

import (
	"errors"
	"net/http"

	reqdto "booklister/internal/handler/dto/request"
	resdto "booklister/internal/handler/dto/response"
	"booklister/internal/handler/httperr"
	"booklister/internal/pkg/errs"
	"booklister/internal/usecase/commands"
	"booklister/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PublishHandler struct {
	cmds commands.PublishCommands
	q    queries.PublishQueries
}

func NewPublishHandler(cmds commands.PublishCommands, q queries.PublishQueries) *PublishHandler {
	return &PublishHandler{cmds: cmds, q: q}
}

// Publish runs the full pipeline for one book. A failed pipeline is still a
// 200 with Success=false and the per-step breakdown; only problems outside the
// pipeline (bad id, unknown book) map to error statuses.
func (h *PublishHandler) Publish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	// An absent body means publish with all defaults.
	var req reqdto.PublishBookRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
			return
		}
	}
	result, err := h.cmds.Publish(c.Request.Context(), id, req.ToOptions())
	if err != nil {
		if errors.Is(err, errs.ErrBookNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Book not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Publish failed", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPublishResult(result))
}

func (h *PublishHandler) Status(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	view, err := h.q.GetPublishStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrBookNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Book not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load status", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPublishStatusView(view))
}
