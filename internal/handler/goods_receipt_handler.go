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

type GoodsReceiptHandler struct {
	grnService service.GoodsReceiptService
}

func NewGoodsReceiptHandler(grnService service.GoodsReceiptService) *GoodsReceiptHandler {
	return &GoodsReceiptHandler{grnService: grnService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *GoodsReceiptHandler) RegisterRoutes(router *gin.RouterGroup) {
	grns := router.Group("/goods-receipts")
	{
		grns.POST("", middleware.RequireCapability(model.CapManageReceiving), h.CreateGRN)
		grns.GET("", middleware.RequireCapability(model.CapManageReceiving), h.ListGRNs)
		grns.GET("/:id", middleware.RequireCapability(model.CapManageReceiving), h.GetGRN)
		grns.PUT("/:id", middleware.RequireCapability(model.CapManageReceiving), h.UpdateGRN)
		grns.POST("/:id/inspect", middleware.RequireCapability(model.CapManageReceiving), h.StartInspection)
		grns.POST("/:id/complete-inspection", middleware.RequireCapability(model.CapManageReceiving), h.CompleteInspection)
		grns.POST("/:id/reject", middleware.RequireCapability(model.CapManageReceiving), h.RejectGRN)
	}
}

// CreateGRN handles POST /goods-receipts
// @Summary      Post a goods receipt
// @Description  Records a delivery against a SENT or PARTIALLY_RECEIVED purchase order; received quantities are checked against each line's remaining quantity
// @Tags         goods-receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateGRNRequest  true  "Goods receipt payload"
// @Success      201      {object}  response.Response{data=service.GoodsReceiptResponse}
// @Failure      422      {object}  response.Response
// @Router       /goods-receipts [post]
func (h *GoodsReceiptHandler) CreateGRN(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreateGRNRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	grn, err := h.grnService.CreateGRN(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, grn))
}

// ListGRNs handles GET /goods-receipts
// @Summary      List goods receipts
// @Tags         goods-receipts
// @Produce      json
// @Security     BearerAuth
// @Param        status             query  string  false  "Filter by status"
// @Param        purchase_order_id  query  string  false  "Filter by purchase order"
// @Param        page               query  int     false  "Page number"
// @Param        limit              query  int     false  "Items per page"
// @Success      200  {object}  response.Response{data=object}
// @Router       /goods-receipts [get]
func (h *GoodsReceiptHandler) ListGRNs(c *gin.Context) {
	params := pagination.Parse(c)
	grns, total, err := h.grnService.ListGRNs(c.Request.Context(), service.GoodsReceiptFilter{
		Status:          c.Query("status"),
		PurchaseOrderID: c.Query("purchase_order_id"),
		Page:            params.Page,
		Limit:           params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"goods_receipts": grns,
		"total":          total,
		"page":           params.Page,
		"limit":          params.Limit,
	}))
}

// GetGRN handles GET /goods-receipts/:id
// @Summary      Get goods receipt by ID
// @Tags         goods-receipts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Goods receipt ID"
// @Success      200  {object}  response.Response{data=service.GoodsReceiptResponse}
// @Failure      404  {object}  response.Response
// @Router       /goods-receipts/{id} [get]
func (h *GoodsReceiptHandler) GetGRN(c *gin.Context) {
	grn, err := h.grnService.GetGRN(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, grn))
}

// UpdateGRN handles PUT /goods-receipts/:id
// @Summary      Update a pending goods receipt
// @Description  Replaces the receipt's lines while PENDING_INSPECTION; PO received quantities are reconciled in the same transaction
// @Tags         goods-receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Goods receipt ID"
// @Param        payload  body      service.UpdateGRNRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.GoodsReceiptResponse}
// @Failure      422      {object}  response.Response
// @Router       /goods-receipts/{id} [put]
func (h *GoodsReceiptHandler) UpdateGRN(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.UpdateGRNRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	grn, err := h.grnService.UpdateGRN(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, grn))
}

// StartInspection handles POST /goods-receipts/:id/inspect
// @Summary      Start inspecting a goods receipt
// @Tags         goods-receipts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Goods receipt ID"
// @Success      200  {object}  response.Response{data=service.GoodsReceiptResponse}
// @Failure      409  {object}  response.Response
// @Router       /goods-receipts/{id}/inspect [post]
func (h *GoodsReceiptHandler) StartInspection(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	grn, err := h.grnService.StartInspection(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, grn))
}

// CompleteInspection handles POST /goods-receipts/:id/complete-inspection
// @Summary      Finalize inspection
// @Description  Records per-line accepted/rejected quantities; accepted + rejected must equal received on every line
// @Tags         goods-receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                             true  "Goods receipt ID"
// @Param        payload  body      service.CompleteInspectionRequest  true  "Inspection decisions"
// @Success      200      {object}  response.Response{data=service.GoodsReceiptResponse}
// @Failure      422      {object}  response.Response
// @Router       /goods-receipts/{id}/complete-inspection [post]
func (h *GoodsReceiptHandler) CompleteInspection(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CompleteInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	grn, err := h.grnService.CompleteInspection(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, grn))
}

// RejectGRN handles POST /goods-receipts/:id/reject
// @Summary      Reject a whole delivery
// @Description  Refuses the delivery and releases its quantities back to the purchase order lines
// @Tags         goods-receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Goods receipt ID"
// @Success      200  {object}  response.Response{data=service.GoodsReceiptResponse}
// @Failure      409  {object}  response.Response
// @Router       /goods-receipts/{id}/reject [post]
func (h *GoodsReceiptHandler) RejectGRN(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body)

	grn, err := h.grnService.RejectGRN(c.Request.Context(), userID, c.Param("id"), body.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, grn))
}
