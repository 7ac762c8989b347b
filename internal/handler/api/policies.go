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
)

type PolicyHandler struct {
	cmds commands.PolicyCommands
	q    queries.PolicyQueries
}

func NewPolicyHandler(cmds commands.PolicyCommands, q queries.PolicyQueries) *PolicyHandler {
	return &PolicyHandler{cmds: cmds, q: q}
}

func (h *PolicyHandler) GetDefaults(c *gin.Context) {
	ids, err := h.q.Defaults(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load policy defaults", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPolicyIDs(ids))
}

func (h *PolicyHandler) SetDefaults(c *gin.Context) {
	var req reqdto.PolicyDefaultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	if err := h.cmds.SetDefaults(c.Request.Context(), req.ToDomain()); err != nil {
		if errors.Is(err, errs.ErrPolicyNotConfigured) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Incomplete policy set", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to save policy defaults", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPolicyIDs(req.ToDomain()))
}
