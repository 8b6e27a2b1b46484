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

type RequisitionHandler struct {
	requisitionService service.RequisitionService
}

func NewRequisitionHandler(requisitionService service.RequisitionService) *RequisitionHandler {
	return &RequisitionHandler{requisitionService: requisitionService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *RequisitionHandler) RegisterRoutes(router *gin.RouterGroup) {
	requisitions := router.Group("/requisitions")
	{
		requisitions.POST("", middleware.RequireCapability(model.CapManageRequisitions), h.CreateRequisition)
		requisitions.GET("", middleware.RequireCapability(model.CapManageRequisitions), h.ListRequisitions)
		requisitions.GET("/:id", middleware.RequireCapability(model.CapManageRequisitions), h.GetRequisition)
		requisitions.PUT("/:id", middleware.RequireCapability(model.CapManageRequisitions), h.UpdateRequisition)
		requisitions.POST("/:id/submit", middleware.RequireCapability(model.CapManageRequisitions), h.SubmitRequisition)
		requisitions.POST("/:id/approve", middleware.RequireCapability(model.CapApproveDocuments), h.ApproveRequisition)
		requisitions.POST("/:id/reject", middleware.RequireCapability(model.CapApproveDocuments), h.RejectRequisition)
		requisitions.POST("/:id/cancel", middleware.RequireCapability(model.CapManageRequisitions), h.CancelRequisition)
	}
}

// CreateRequisition handles POST /requisitions
// @Summary      Create a purchase requisition
// @Description  Creates a DRAFT requisition with its line items; totals are derived server-side
// @Tags         requisitions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequisitionRequest  true  "Requisition payload"
// @Success      201      {object}  response.Response{data=service.RequisitionResponse}
// @Failure      400      {object}  response.Response
// @Router       /requisitions [post]
func (h *RequisitionHandler) CreateRequisition(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	requisition, err := h.requisitionService.CreateRequisition(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, requisition))
}

// ListRequisitions handles GET /requisitions
// @Summary      List requisitions
// @Description  Retrieves a paginated, filterable list of requisitions
// @Tags         requisitions
// @Produce      json
// @Security     BearerAuth
// @Param        status        query  string  false  "Filter by status"
// @Param        department    query  string  false  "Filter by department"
// @Param        requester_id  query  string  false  "Filter by requester"
// @Param        approver_id   query  string  false  "Filter by pending approver"
// @Param        page          query  int     false  "Page number"
// @Param        limit         query  int     false  "Items per page"
// @Success      200  {object}  response.Response{data=object}
// @Router       /requisitions [get]
func (h *RequisitionHandler) ListRequisitions(c *gin.Context) {
	params := pagination.Parse(c)
	requisitions, total, err := h.requisitionService.ListRequisitions(c.Request.Context(), service.RequisitionFilter{
		Status:      c.Query("status"),
		Department:  c.Query("department"),
		RequesterID: c.Query("requester_id"),
		ApproverID:  c.Query("approver_id"),
		Page:        params.Page,
		Limit:       params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"requisitions": requisitions,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// GetRequisition handles GET /requisitions/:id
// @Summary      Get requisition by ID
// @Tags         requisitions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=service.RequisitionResponse}
// @Failure      404  {object}  response.Response
// @Router       /requisitions/{id} [get]
func (h *RequisitionHandler) GetRequisition(c *gin.Context) {
	requisition, err := h.requisitionService.GetRequisition(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// UpdateRequisition handles PUT /requisitions/:id
// @Summary      Update a DRAFT requisition
// @Description  Replaces items and metadata; allowed only while the requisition is DRAFT
// @Tags         requisitions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Requisition ID"
// @Param        payload  body      service.UpdateRequisitionRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.RequisitionResponse}
// @Failure      409      {object}  response.Response
// @Router       /requisitions/{id} [put]
func (h *RequisitionHandler) UpdateRequisition(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.UpdateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	requisition, err := h.requisitionService.UpdateRequisition(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// SubmitRequisition handles POST /requisitions/:id/submit
// @Summary      Submit a requisition for approval
// @Description  Routes the requisition to its stage-one approver, applying active delegations
// @Tags         requisitions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=service.RequisitionResponse}
// @Failure      422  {object}  response.Response
// @Router       /requisitions/{id}/submit [post]
func (h *RequisitionHandler) SubmitRequisition(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	requisition, err := h.requisitionService.SubmitRequisition(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// ApproveRequisition handles POST /requisitions/:id/approve
// @Summary      Approve the current stage
// @Tags         requisitions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true   "Requisition ID"
// @Param        payload  body      service.ApprovalDecisionRequest  false  "Decision comments"
// @Success      200      {object}  response.Response{data=service.RequisitionResponse}
// @Failure      403      {object}  response.Response
// @Router       /requisitions/{id}/approve [post]
func (h *RequisitionHandler) ApproveRequisition(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.ApprovalDecisionRequest
	_ = c.ShouldBindJSON(&req)

	requisition, err := h.requisitionService.ApproveRequisition(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// RejectRequisition handles POST /requisitions/:id/reject
// @Summary      Reject the current stage
// @Tags         requisitions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true   "Requisition ID"
// @Param        payload  body      service.ApprovalDecisionRequest  false  "Decision comments"
// @Success      200      {object}  response.Response{data=service.RequisitionResponse}
// @Failure      403      {object}  response.Response
// @Router       /requisitions/{id}/reject [post]
func (h *RequisitionHandler) RejectRequisition(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.ApprovalDecisionRequest
	_ = c.ShouldBindJSON(&req)

	requisition, err := h.requisitionService.RejectRequisition(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}

// CancelRequisition handles POST /requisitions/:id/cancel
// @Summary      Cancel a requisition
// @Tags         requisitions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Requisition ID"
// @Success      200  {object}  response.Response{data=service.RequisitionResponse}
// @Failure      409  {object}  response.Response
// @Router       /requisitions/{id}/cancel [post]
func (h *RequisitionHandler) CancelRequisition(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	requisition, err := h.requisitionService.CancelRequisition(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requisition))
}
