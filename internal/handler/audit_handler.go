package handler

import (
	"net/http"

	"procurement-backend/internal/middleware"
	"procurement-backend/internal/model"
	"procurement-backend/internal/service"
	"procurement-backend/pkg/pagination"
	"procurement-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audits := router.Group("/audit-logs")
	{
		audits.GET("", middleware.RequireCapability(model.CapViewAudit), h.ListAuditLogs)
	}
}

// ListAuditLogs handles GET /audit-logs
// @Summary      List audit log entries
// @Tags         audit-logs
// @Produce      json
// @Security     BearerAuth
// @Param        action  query  string  false  "Filter by action"
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Items per page"
// @Success      200  {object}  response.Response{data=object}
// @Router       /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)
	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), c.Query("action"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"audit_logs": logs,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
	}))
}
