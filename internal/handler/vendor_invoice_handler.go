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

type VendorInvoiceHandler struct {
	invoiceService service.VendorInvoiceService
}

func NewVendorInvoiceHandler(invoiceService service.VendorInvoiceService) *VendorInvoiceHandler {
	return &VendorInvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *VendorInvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/vendor-invoices")
	{
		invoices.POST("", middleware.RequireCapability(model.CapManageInvoices), h.CreateInvoice)
		invoices.GET("", middleware.RequireCapability(model.CapManageInvoices), h.ListInvoices)
		invoices.GET("/:id", middleware.RequireCapability(model.CapManageInvoices), h.GetInvoice)
		invoices.POST("/:id/match", middleware.RequireCapability(model.CapManageInvoices), h.PerformThreeWayMatch)
		invoices.POST("/:id/approve-payment", middleware.RequireCapability(model.CapProcessPayments), h.ApproveForPayment)
		invoices.POST("/:id/dispute", middleware.RequireCapability(model.CapManageInvoices), h.DisputeInvoice)
		invoices.POST("/:id/payments", middleware.RequireCapability(model.CapProcessPayments), h.RecordPayment)
	}
}

// CreateInvoice handles POST /vendor-invoices
// @Summary      Register a vendor invoice
// @Tags         vendor-invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateInvoiceRequest  true  "Invoice payload"
// @Success      201      {object}  response.Response{data=service.VendorInvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /vendor-invoices [post]
func (h *VendorInvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, inv))
}

// ListInvoices handles GET /vendor-invoices
// @Summary      List vendor invoices
// @Tags         vendor-invoices
// @Produce      json
// @Security     BearerAuth
// @Param        match_status    query  string  false  "Filter by match status"
// @Param        payment_status  query  string  false  "Filter by payment status"
// @Param        vendor_id       query  string  false  "Filter by vendor"
// @Param        page            query  int     false  "Page number"
// @Param        limit           query  int     false  "Items per page"
// @Success      200  {object}  response.Response{data=object}
// @Router       /vendor-invoices [get]
func (h *VendorInvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)
	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), service.VendorInvoiceFilter{
		MatchStatus:   c.Query("match_status"),
		PaymentStatus: c.Query("payment_status"),
		VendorID:      c.Query("vendor_id"),
		Page:          params.Page,
		Limit:         params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetInvoice handles GET /vendor-invoices/:id
// @Summary      Get vendor invoice by ID
// @Tags         vendor-invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.VendorInvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /vendor-invoices/{id} [get]
func (h *VendorInvoiceHandler) GetInvoice(c *gin.Context) {
	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, inv))
}

// PerformThreeWayMatch handles POST /vendor-invoices/:id/match
// @Summary      Run three-way matching
// @Description  Compares invoice lines against purchase order prices and accepted receipt quantities within the given tolerance
// @Tags         vendor-invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.ThreeWayMatchRequest  true  "Tolerance settings"
// @Success      200      {object}  response.Response{data=service.MatchResult}
// @Failure      409      {object}  response.Response
// @Router       /vendor-invoices/{id}/match [post]
func (h *VendorInvoiceHandler) PerformThreeWayMatch(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.ThreeWayMatchRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.invoiceService.PerformThreeWayMatch(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ApproveForPayment handles POST /vendor-invoices/:id/approve-payment
// @Summary      Approve an invoice for payment
// @Tags         vendor-invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.VendorInvoiceResponse}
// @Failure      409  {object}  response.Response
// @Router       /vendor-invoices/{id}/approve-payment [post]
func (h *VendorInvoiceHandler) ApproveForPayment(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	inv, err := h.invoiceService.ApproveForPayment(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, inv))
}

// DisputeInvoice handles POST /vendor-invoices/:id/dispute
// @Summary      Dispute an invoice
// @Description  Marks the invoice DISPUTED and revokes any payment approval
// @Tags         vendor-invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.VendorInvoiceResponse}
// @Failure      409  {object}  response.Response
// @Router       /vendor-invoices/{id}/dispute [post]
func (h *VendorInvoiceHandler) DisputeInvoice(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	inv, err := h.invoiceService.DisputeInvoice(c.Request.Context(), userID, c.Param("id"), body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, inv))
}

// RecordPayment handles POST /vendor-invoices/:id/payments
// @Summary      Record a payment against an invoice
// @Description  Requires payment approval; the amount may not exceed the outstanding balance
// @Tags         vendor-invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment payload"
// @Success      200      {object}  response.Response{data=service.VendorInvoiceResponse}
// @Failure      409      {object}  response.Response
// @Router       /vendor-invoices/{id}/payments [post]
func (h *VendorInvoiceHandler) RecordPayment(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	inv, err := h.invoiceService.RecordPayment(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, inv))
}
