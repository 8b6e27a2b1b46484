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

type RFQHandler struct {
	rfqService service.RFQService
}

func NewRFQHandler(rfqService service.RFQService) *RFQHandler {
	return &RFQHandler{rfqService: rfqService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *RFQHandler) RegisterRoutes(router *gin.RouterGroup) {
	rfqs := router.Group("/rfqs")
	{
		rfqs.POST("", middleware.RequireCapability(model.CapManageRFQs), h.CreateRFQ)
		rfqs.GET("", middleware.RequireCapability(model.CapManageRFQs), h.ListRFQs)
		rfqs.GET("/:id", middleware.RequireCapability(model.CapManageRFQs), h.GetRFQ)
		rfqs.PUT("/:id", middleware.RequireCapability(model.CapManageRFQs), h.UpdateRFQ)
		rfqs.POST("/:id/publish", middleware.RequireCapability(model.CapManageRFQs), h.PublishRFQ)
		rfqs.POST("/:id/invite", middleware.RequireCapability(model.CapManageRFQs), h.InviteVendors)
		rfqs.POST("/:id/responses", middleware.RequireCapability(model.CapManageRFQs), h.SubmitResponse)
		rfqs.PUT("/:id/responses/:responseId", middleware.RequireCapability(model.CapManageRFQs), h.UpdateResponse)
		rfqs.POST("/:id/evaluate", middleware.RequireCapability(model.CapManageRFQs), h.StartEvaluation)
		rfqs.POST("/:id/award", middleware.RequireCapability(model.CapManageRFQs), h.AwardRFQ)
		rfqs.POST("/:id/close", middleware.RequireCapability(model.CapManageRFQs), h.CloseRFQ)
		rfqs.POST("/:id/cancel", middleware.RequireCapability(model.CapManageRFQs), h.CancelRFQ)
	}
}

// CreateRFQ handles POST /rfqs
// @Summary      Create a request for quotation
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRFQRequest  true  "RFQ payload"
// @Success      201      {object}  response.Response{data=service.RFQView}
// @Failure      400      {object}  response.Response
// @Router       /rfqs [post]
func (h *RFQHandler) CreateRFQ(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreateRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rfq, err := h.rfqService.CreateRFQ(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rfq))
}

// ListRFQs handles GET /rfqs
// @Summary      List RFQs
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "Filter by status"
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Items per page"
// @Success      200  {object}  response.Response{data=object}
// @Router       /rfqs [get]
func (h *RFQHandler) ListRFQs(c *gin.Context) {
	params := pagination.Parse(c)
	rfqs, total, err := h.rfqService.ListRFQs(c.Request.Context(), service.RFQFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"rfqs":  rfqs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// GetRFQ handles GET /rfqs/:id
// @Summary      Get RFQ by ID
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "RFQ ID"
// @Success      200  {object}  response.Response{data=service.RFQView}
// @Failure      404  {object}  response.Response
// @Router       /rfqs/{id} [get]
func (h *RFQHandler) GetRFQ(c *gin.Context) {
	rfq, err := h.rfqService.GetRFQ(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}

// UpdateRFQ handles PUT /rfqs/:id
// @Summary      Update a draft RFQ
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "RFQ ID"
// @Param        payload  body      service.UpdateRFQRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.RFQView}
// @Failure      409      {object}  response.Response
// @Router       /rfqs/{id} [put]
func (h *RFQHandler) UpdateRFQ(c *gin.Context) {
	var req service.UpdateRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rfq, err := h.rfqService.UpdateRFQ(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}

// PublishRFQ handles POST /rfqs/:id/publish
// @Summary      Publish an RFQ to its invited vendors
// @Description  Requires at least one item, at least one invited vendor and a response deadline in the future
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "RFQ ID"
// @Success      200  {object}  response.Response{data=service.RFQView}
// @Failure      409  {object}  response.Response
// @Router       /rfqs/{id}/publish [post]
func (h *RFQHandler) PublishRFQ(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	rfq, err := h.rfqService.PublishRFQ(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}

// InviteVendors handles POST /rfqs/:id/invite
// @Summary      Invite vendors to quote
// @Description  Blacklisted vendors are refused; inviting an already invited vendor is a no-op
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "RFQ ID"
// @Param        payload  body      service.InviteVendorsRequest true  "Vendor IDs"
// @Success      200      {object}  response.Response{data=service.RFQView}
// @Failure      400      {object}  response.Response
// @Router       /rfqs/{id}/invite [post]
func (h *RFQHandler) InviteVendors(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.InviteVendorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rfq, err := h.rfqService.InviteVendors(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}

// SubmitResponse handles POST /rfqs/:id/responses
// @Summary      Record a vendor's quotation
// @Description  Accepted only while the RFQ is published and before the deadline; one response per vendor
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "RFQ ID"
// @Param        payload  body      service.SubmitResponseRequest true  "Quotation payload"
// @Success      201      {object}  response.Response{data=service.RFQResponseView}
// @Failure      409      {object}  response.Response
// @Router       /rfqs/{id}/responses [post]
func (h *RFQHandler) SubmitResponse(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	resp, err := h.rfqService.SubmitResponse(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, resp))
}

// UpdateResponse handles PUT /rfqs/:id/responses/:responseId
// @Summary      Revise a submitted quotation
// @Description  Accepted only while the RFQ is published and before the deadline; totals are recomputed from the new lines
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string                        true  "RFQ ID"
// @Param        responseId  path      string                        true  "Response ID"
// @Param        payload     body      service.SubmitResponseRequest true  "Quotation payload"
// @Success      200         {object}  response.Response{data=service.RFQResponseView}
// @Failure      409         {object}  response.Response
// @Router       /rfqs/{id}/responses/{responseId} [put]
func (h *RFQHandler) UpdateResponse(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	resp, err := h.rfqService.UpdateResponse(c.Request.Context(), userID, c.Param("id"), c.Param("responseId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, resp))
}

// StartEvaluation handles POST /rfqs/:id/evaluate
// @Summary      Move an RFQ into evaluation
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "RFQ ID"
// @Success      200  {object}  response.Response{data=service.RFQView}
// @Failure      409  {object}  response.Response
// @Router       /rfqs/{id}/evaluate [post]
func (h *RFQHandler) StartEvaluation(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	rfq, err := h.rfqService.StartEvaluation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}

// AwardRFQ handles POST /rfqs/:id/award
// @Summary      Award an RFQ to one response
// @Description  Marks the chosen response SELECTED and every other response REJECTED
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "RFQ ID"
// @Param        payload  body      object  true  "response_id to award"
// @Success      200      {object}  response.Response{data=service.RFQView}
// @Failure      409      {object}  response.Response
// @Router       /rfqs/{id}/award [post]
func (h *RFQHandler) AwardRFQ(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var body struct {
		ResponseID string `json:"response_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rfq, err := h.rfqService.AwardRFQ(c.Request.Context(), userID, c.Param("id"), body.ResponseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}

// CloseRFQ handles POST /rfqs/:id/close
// @Summary      Close an RFQ without awarding
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "RFQ ID"
// @Success      200  {object}  response.Response{data=service.RFQView}
// @Failure      409  {object}  response.Response
// @Router       /rfqs/{id}/close [post]
func (h *RFQHandler) CloseRFQ(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	rfq, err := h.rfqService.CloseRFQ(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}

// CancelRFQ handles POST /rfqs/:id/cancel
// @Summary      Cancel an RFQ
// @Tags         rfqs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "RFQ ID"
// @Success      200  {object}  response.Response{data=service.RFQView}
// @Failure      409  {object}  response.Response
// @Router       /rfqs/{id}/cancel [post]
func (h *RFQHandler) CancelRFQ(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	rfq, err := h.rfqService.CancelRFQ(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rfq))
}
