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

type PurchaseOrderHandler struct {
	poService service.PurchaseOrderService
}

func NewPurchaseOrderHandler(poService service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *PurchaseOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	pos := router.Group("/purchase-orders")
	{
		pos.POST("", middleware.RequireCapability(model.CapManagePOs), h.CreatePO)
		pos.POST("/from-rfq/:id", middleware.RequireCapability(model.CapManagePOs), h.CreatePOFromRFQ)
		pos.GET("", middleware.RequireCapability(model.CapManagePOs), h.ListPOs)
		pos.GET("/:id", middleware.RequireCapability(model.CapManagePOs), h.GetPO)
		pos.PUT("/:id", middleware.RequireCapability(model.CapManagePOs), h.UpdatePO)
		pos.POST("/:id/approve", middleware.RequireCapability(model.CapApproveDocuments), h.ApprovePO)
		pos.POST("/:id/send", middleware.RequireCapability(model.CapManagePOs), h.SendPO)
		pos.POST("/:id/complete", middleware.RequireCapability(model.CapManagePOs), h.CompletePO)
		pos.POST("/:id/cancel", middleware.RequireCapability(model.CapManagePOs), h.CancelPO)
	}
}

// CreatePO handles POST /purchase-orders
// @Summary      Create a purchase order
// @Description  Creates a DRAFT purchase order, optionally sourced from an approved requisition
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePORequest  true  "Purchase order payload"
// @Success      201      {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /purchase-orders [post]
func (h *PurchaseOrderHandler) CreatePO(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	po, err := h.poService.CreatePO(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, po))
}

// CreatePOFromRFQ handles POST /purchase-orders/from-rfq/:id
// @Summary      Create a purchase order from an awarded RFQ
// @Description  Converts the SELECTED response of an AWARDED RFQ into a DRAFT purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "RFQ ID"
// @Param        payload  body      service.CreatePOFromRFQRequest  true  "Conversion payload"
// @Success      201      {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      409      {object}  response.Response
// @Router       /purchase-orders/from-rfq/{id} [post]
func (h *PurchaseOrderHandler) CreatePOFromRFQ(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreatePOFromRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	po, err := h.poService.CreatePOFromRFQ(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, po))
}

// ListPOs handles GET /purchase-orders
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        status     query  string  false  "Filter by status"
// @Param        vendor_id  query  string  false  "Filter by vendor"
// @Param        page       query  int     false  "Page number"
// @Param        limit      query  int     false  "Items per page"
// @Success      200  {object}  response.Response{data=object}
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) ListPOs(c *gin.Context) {
	params := pagination.Parse(c)
	pos, total, err := h.poService.ListPOs(c.Request.Context(), service.PurchaseOrderFilter{
		Status:   c.Query("status"),
		VendorID: c.Query("vendor_id"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"purchase_orders": pos,
		"total":           total,
		"page":            params.Page,
		"limit":           params.Limit,
	}))
}

// GetPO handles GET /purchase-orders/:id
// @Summary      Get purchase order by ID
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetPO(c *gin.Context) {
	po, err := h.poService.GetPO(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// UpdatePO handles PUT /purchase-orders/:id
// @Summary      Update a DRAFT purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Purchase order ID"
// @Param        payload  body      service.UpdatePORequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      409      {object}  response.Response
// @Router       /purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) UpdatePO(c *gin.Context) {
	var req service.UpdatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	po, err := h.poService.UpdatePO(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// ApprovePO handles POST /purchase-orders/:id/approve
// @Summary      Approve a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      409  {object}  response.Response
// @Router       /purchase-orders/{id}/approve [post]
func (h *PurchaseOrderHandler) ApprovePO(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	po, err := h.poService.ApprovePO(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// SendPO handles POST /purchase-orders/:id/send
// @Summary      Send an approved purchase order to the vendor
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      409  {object}  response.Response
// @Router       /purchase-orders/{id}/send [post]
func (h *PurchaseOrderHandler) SendPO(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	po, err := h.poService.SendPO(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// CompletePO handles POST /purchase-orders/:id/complete
// @Summary      Complete a fully received purchase order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      409  {object}  response.Response
// @Router       /purchase-orders/{id}/complete [post]
func (h *PurchaseOrderHandler) CompletePO(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	po, err := h.poService.CompletePO(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// CancelPO handles POST /purchase-orders/:id/cancel
// @Summary      Cancel a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      409  {object}  response.Response
// @Router       /purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) CancelPO(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	po, err := h.poService.CancelPO(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}
