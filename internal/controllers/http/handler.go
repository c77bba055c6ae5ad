package http

import (
	"errors"
	"io"
	"log"
	"net/http"

	"roomservice/internal/domain"
	"roomservice/internal/infra/xendit"
	"roomservice/internal/services"

	"github.com/gin-gonic/gin"
)

const callbackTokenHeader = "x-callback-token"

type Handler struct {
	orders   *services.OrderService
	payments *services.PaymentService
}

func NewHandler(orders *services.OrderService, payments *services.PaymentService) *Handler {
	return &Handler{orders: orders, payments: payments}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.GetGuestOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.POST("/orders/:id/payment", h.BeginPayment)
	r.GET("/api/payments/status", h.GetPaymentStatus)

	r.POST("/webhooks/xendit", h.InvoiceCallback)

	admin := r.Group("/admin")
	admin.POST("/orders/:id/accept", h.AcceptOrder)
	admin.POST("/orders/:id/reject", h.RejectOrder)
	admin.POST("/orders/:id/status", h.UpdateOrderStatus)
	admin.POST("/orders/:id/billed", h.MarkOrderBilled)
	admin.POST("/orders/:id/payment-expired", h.MarkPaymentExpired)
	admin.POST("/rooms/:roomId/billed", h.MarkRoomBilled)
	admin.GET("/billing/rooms", h.RoomBillingSnapshot)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]domain.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.LineItemInput{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			Note:       item.Note,
		})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.RoomID, req.GuestID, items, req.Note, req.GuestPhone)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateOrderResponse{
		ID:         order.ID,
		ExternalID: order.ExternalID,
		SubTotal:   order.SubTotal,
	})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetGuestOrders(c *gin.Context) {
	roomID := c.Query("roomId")
	guestID := c.Query("guestId")
	if roomID == "" || guestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomId and guestId are required"})
		return
	}
	orders, err := h.orders.GetGuestOrders(c.Request.Context(), roomID, guestID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) BeginPayment(c *gin.Context) {
	var req BeginPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	methods := make([]xendit.PaymentMethod, 0, len(req.PaymentMethods))
	for _, m := range req.PaymentMethods {
		methods = append(methods, xendit.PaymentMethod(m))
	}

	intent, err := h.payments.BeginPaymentIntent(c.Request.Context(), c.Param("id"), methods)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

func (h *Handler) GetPaymentStatus(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId is required"})
		return
	}
	result, err := h.payments.GetPaymentStatus(c.Request.Context(), orderID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// InvoiceCallback processes the provider webhook. The provider retries on
// non-2xx, so unexpected internal faults answer 500 rather than swallowing
// the event, and response bodies stay generic: failure detail goes to the
// server log only.
func (h *Handler) InvoiceCallback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}

	result, err := h.payments.HandleInvoiceCallback(c.Request.Context(), body, c.GetHeader(callbackTokenHeader))
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		case errors.Is(err, domain.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		default:
			log.Printf("webhook processing error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"order_id":       result.OrderID,
		"payment_status": result.PaymentStatus,
	})
}

func (h *Handler) AcceptOrder(c *gin.Context) {
	order, err := h.orders.AcceptOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) RejectOrder(c *gin.Context) {
	var req RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orders.RejectOrder(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orders.AdvanceOrder(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) MarkOrderBilled(c *gin.Context) {
	order, err := h.orders.MarkOrderBilled(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) MarkPaymentExpired(c *gin.Context) {
	if err := h.payments.MarkPaymentExpired(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) MarkRoomBilled(c *gin.Context) {
	ids, err := h.orders.MarkRoomBilled(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"billedOrderIds": ids})
}

func (h *Handler) RoomBillingSnapshot(c *gin.Context) {
	rows, err := h.orders.RoomBillingSnapshot(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	var te *domain.InvalidTransitionError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &te):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable, please try again"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
