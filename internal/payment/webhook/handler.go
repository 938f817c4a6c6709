package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NTWKKM/ntwcoffeeroaster/internal/logger"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/orders"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/payment"
)

// Event is the envelope the processor posts to the webhook endpoint.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object PaymentIntent `json:"object"`
	} `json:"data"`
}

// PaymentIntent is the slice of the intent object the webhook cares about.
// The checkout order id travels in the intent metadata.
type PaymentIntent struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Metadata map[string]string `json:"metadata"`
}

// EventPaymentSucceeded is the only event type that triggers a side effect.
const EventPaymentSucceeded = "payment_intent.succeeded"

// OrderCompleter marks an order's payment as completed.
type OrderCompleter interface {
	MarkCompleted(ctx context.Context, orderID string) error
}

// Handler processes payment-processor webhook deliveries. The raw body's
// signature is verified against the shared secret before anything in the
// payload is trusted; everything else is acknowledged and ignored.
type Handler struct {
	Orders  OrderCompleter
	Secret  string
	nowFunc func() time.Time
}

// NewHandler builds a webhook Handler.
func NewHandler(completer OrderCompleter, secret string) *Handler {
	if secret == "" {
		logger.L().Warn("Webhook secret is empty, all deliveries will be rejected")
	}
	return &Handler{
		Orders:  completer,
		Secret:  secret,
		nowFunc: time.Now,
	}
}

// Handle is the gin route handler for POST webhook deliveries.
func (h *Handler) Handle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook Error: failed to read body")
		return
	}

	sig := c.GetHeader(payment.SignatureHeader)
	if err := payment.VerifySignature(body, sig, h.Secret, h.nowFunc()); err != nil {
		logger.L().Warn("Webhook signature verification failed", zap.Error(err))
		c.String(http.StatusBadRequest, "Webhook Error: %v", err)
		return
	}

	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		c.String(http.StatusBadRequest, "Webhook Error: invalid JSON payload")
		return
	}

	log := logger.L().With(
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type),
	)

	switch ev.Type {
	case EventPaymentSucceeded:
		orderID := ev.Data.Object.Metadata["order_id"]
		if orderID == "" {
			log.Warn("Payment succeeded event without order_id metadata",
				zap.String("intent_id", ev.Data.Object.ID))
			break
		}
		err := h.Orders.MarkCompleted(c.Request.Context(), orderID)
		switch {
		case err == nil:
			log.Info("Order marked completed", zap.String("order_id", orderID))
		case errors.Is(err, orders.ErrStatusMismatch):
			// Duplicate delivery, or the order never reached paid. Either way
			// re-delivering will not help.
			log.Warn("Order not in paid status, ignoring", zap.String("order_id", orderID))
		default:
			log.Error("Failed to update order", zap.String("order_id", orderID), zap.Error(err))
			c.String(http.StatusInternalServerError, "failed to update order")
			return
		}
	default:
		log.Info("Unhandled event type, ignoring")
	}

	c.Status(http.StatusOK)
}
