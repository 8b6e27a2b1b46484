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

type DelegationHandler struct {
	delegationService service.DelegationService
}

func NewDelegationHandler(delegationService service.DelegationService) *DelegationHandler {
	return &DelegationHandler{delegationService: delegationService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *DelegationHandler) RegisterRoutes(router *gin.RouterGroup) {
	delegations := router.Group("/delegations")
	{
		delegations.POST("", middleware.RequireCapability(model.CapApproveDocuments), h.CreateDelegation)
		delegations.GET("", middleware.RequireCapability(model.CapApproveDocuments), h.ListDelegations)
		delegations.DELETE("/:id", middleware.RequireCapability(model.CapApproveDocuments), h.RevokeDelegation)
	}
}

// CreateDelegation handles POST /delegations
// @Summary      Delegate approval authority
// @Description  Routes the caller's pending approvals to another user for a date window; overlapping windows are rejected
// @Tags         delegations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDelegationRequest  true  "Delegation payload"
// @Success      201      {object}  response.Response{data=service.DelegationResponse}
// @Failure      409      {object}  response.Response
// @Router       /delegations [post]
func (h *DelegationHandler) CreateDelegation(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreateDelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	delegation, err := h.delegationService.CreateDelegation(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, delegation))
}

// ListDelegations handles GET /delegations
// @Summary      List the caller's delegations
// @Tags         delegations
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number"
// @Param        limit  query  int  false  "Items per page"
// @Success      200  {object}  response.Response{data=object}
// @Router       /delegations [get]
func (h *DelegationHandler) ListDelegations(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	delegations, total, err := h.delegationService.ListDelegations(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"delegations": delegations,
		"total":       total,
		"page":        params.Page,
		"limit":       params.Limit,
	}))
}

// RevokeDelegation handles DELETE /delegations/:id
// @Summary      Revoke a delegation
// @Tags         delegations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Delegation ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /delegations/{id} [delete]
func (h *DelegationHandler) RevokeDelegation(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.delegationService.RevokeDelegation(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Delegation revoked"}))
}
