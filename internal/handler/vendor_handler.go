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

type VendorHandler struct {
	vendorService service.VendorService
}

func NewVendorHandler(vendorService service.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *VendorHandler) RegisterRoutes(router *gin.RouterGroup) {
	vendors := router.Group("/vendors")
	{
		vendors.POST("", middleware.RequireCapability(model.CapManageVendors), h.CreateVendor)
		vendors.GET("", middleware.RequireAuth(), h.ListVendors)
		vendors.GET("/:id", middleware.RequireAuth(), h.GetVendor)
		vendors.PUT("/:id", middleware.RequireCapability(model.CapManageVendors), h.UpdateVendor)
		vendors.PUT("/:id/status", middleware.RequireCapability(model.CapManageVendors), h.SetVendorStatus)
		vendors.DELETE("/:id", middleware.RequireCapability(model.CapManageVendors), h.DeleteVendor)
	}
}

// CreateVendor handles POST /vendors
// @Summary      Register a vendor
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateVendorRequest  true  "Vendor payload"
// @Success      201      {object}  response.Response{data=service.VendorResponse}
// @Failure      400      {object}  response.Response
// @Router       /vendors [post]
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vendor))
}

// ListVendors handles GET /vendors
// @Summary      List vendors
// @Tags         vendors
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "Filter by status"
// @Param        search  query  string  false  "Search by name or code"
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Items per page"
// @Success      200  {object}  response.Response{data=object}
// @Router       /vendors [get]
func (h *VendorHandler) ListVendors(c *gin.Context) {
	params := pagination.Parse(c)
	vendors, total, err := h.vendorService.ListVendors(c.Request.Context(), c.Query("status"), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"vendors": vendors,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// GetVendor handles GET /vendors/:id
// @Summary      Get vendor by ID
// @Tags         vendors
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vendor ID"
// @Success      200  {object}  response.Response{data=service.VendorResponse}
// @Failure      404  {object}  response.Response
// @Router       /vendors/{id} [get]
func (h *VendorHandler) GetVendor(c *gin.Context) {
	vendor, err := h.vendorService.GetVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendor))
}

// UpdateVendor handles PUT /vendors/:id
// @Summary      Update vendor details
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Vendor ID"
// @Param        payload  body      service.UpdateVendorRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.VendorResponse}
// @Failure      404      {object}  response.Response
// @Router       /vendors/{id} [put]
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req service.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendor))
}

// SetVendorStatus handles PUT /vendors/:id/status
// @Summary      Change vendor status
// @Description  Moves the vendor between ACTIVE, INACTIVE and BLACKLISTED; blacklisted vendors cannot be invited to new RFQs or receive new purchase orders
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Vendor ID"
// @Param        payload  body      object  true  "New status"
// @Success      200      {object}  response.Response{data=service.VendorResponse}
// @Failure      400      {object}  response.Response
// @Router       /vendors/{id}/status [put]
func (h *VendorHandler) SetVendorStatus(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vendor, err := h.vendorService.SetVendorStatus(c.Request.Context(), userID, c.Param("id"), body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendor))
}

// DeleteVendor handles DELETE /vendors/:id
// @Summary      Delete a vendor
// @Tags         vendors
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vendor ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /vendors/{id} [delete]
func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.vendorService.DeleteVendor(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Vendor deleted"}))
}
