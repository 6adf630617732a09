package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mdclab/mdc-service/internal/adapters/http/dto"
	"github.com/mdclab/mdc-service/internal/app"
)

// NotificationHandler handles email and notification endpoints.
type NotificationHandler struct {
	service *app.NotificationService
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(service *app.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		service: service,
	}
}

// EmailResponse reports an email delivery and the request id the pooled
// task observed.
type EmailResponse struct {
	Message           string `json:"message"`
	ObservedRequestID string `json:"observedRequestId"`
}

// NotificationResponse reports the concurrent fan-out outcome.
type NotificationResponse struct {
	Message               string `json:"message"`
	SaveObservedRequestID string `json:"saveObservedRequestId"`
	PushObservedRequestID string `json:"pushObservedRequestId"`
}

// SendEmailWithMDC handles GET /api/v1/email/:email/with-mdc
// Sends asynchronously with the request's diagnostic context carried along.
func (h *NotificationHandler) SendEmailWithMDC(c *gin.Context) {
	ctx := c.Request.Context()

	future, err := h.service.SendEmail(ctx, c.Param("email"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := future.Wait(ctx)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, EmailResponse{
		Message:           result.Message,
		ObservedRequestID: result.ObservedRequestID,
	})
}

// SendEmailWithoutMDC handles GET /api/v1/email/:email/without-mdc
// Sends asynchronously without propagation; the observed request id in
// the response is empty.
func (h *NotificationHandler) SendEmailWithoutMDC(c *gin.Context) {
	ctx := c.Request.Context()

	future, err := h.service.SendEmailDetached(ctx, c.Param("email"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := future.Wait(ctx)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, EmailResponse{
		Message:           result.Message,
		ObservedRequestID: result.ObservedRequestID,
	})
}

// ProcessNotification handles POST /api/v1/notification?userId=&message=
// Saves and pushes concurrently; each branch carries the request's
// diagnostic context on its own store.
func (h *NotificationHandler) ProcessNotification(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		dto.HandleErrorCode(c, dto.ErrorCodeBadRequest, "userId query parameter is required")
		return
	}

	result, err := h.service.ProcessNotification(c.Request.Context(), userID, c.Query("message"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, NotificationResponse{
		Message:               "notification processed",
		SaveObservedRequestID: result.SaveObservedRequestID,
		PushObservedRequestID: result.PushObservedRequestID,
	})
}

// RegisterNotificationRoutes registers email and notification routes on
// the given router group.
func (h *NotificationHandler) RegisterNotificationRoutes(rg *gin.RouterGroup) {
	email := rg.Group("/email")
	email.GET("/:email/with-mdc", h.SendEmailWithMDC)
	email.GET("/:email/without-mdc", h.SendEmailWithoutMDC)

	rg.POST("/notification", h.ProcessNotification)
}
