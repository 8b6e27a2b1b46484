package handler

import (
	"net/http"

	"procurement-backend/internal/middleware"
	"procurement-backend/internal/service"
	"procurement-backend/pkg/pagination"
	"procurement-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	notifications.Use(middleware.RequireAuth())
	{
		notifications.GET("", h.ListNotifications)
		notifications.PUT("/:id/read", h.MarkRead)
		notifications.PUT("/read-all", h.MarkAllRead)
	}
}

// ListNotifications handles GET /notifications
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread_only  query  bool  false  "Only unread notifications"
// @Param        page         query  int   false  "Page number"
// @Param        limit        query  int   false  "Items per page"
// @Success      200  {object}  response.Response{data=object}
// @Router       /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	unreadOnly := c.Query("unread_only") == "true"
	notifications, total, err := h.notificationService.ListNotifications(c.Request.Context(), userID, unreadOnly, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         total,
		"page":          params.Page,
		"limit":         params.Limit,
	}))
}

// MarkRead handles PUT /notifications/:id/read
// @Summary      Mark one notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Notification marked read"}))
}

// MarkAllRead handles PUT /notifications/read-all
// @Summary      Mark all of the caller's notifications read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "All notifications marked read"}))
}
