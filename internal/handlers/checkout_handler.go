package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NTWKKM/ntwcoffeeroaster/internal/aws"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/catalog"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/checkout"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/logger"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/orders"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/payment"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/validation"
)

// HandlerConfig groups dependencies for the HTTP handlers.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	CloudWatchClient aws.CloudWatchAPI // nil disables metrics
	ProductsTable    string
	OrdersTable      string
	MetricsNamespace string
	Gateway          payment.Gateway
	WebhookSecret    string
}

// RegisterRoutes registers the health, checkout, catalog and payment routes.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v := validation.New()
	checkoutSvc := checkout.NewService(cfg.DynamoDBClient, cfg.ProductsTable, cfg.OrdersTable)
	productStore := catalog.NewStore(cfg.DynamoDBClient, cfg.ProductsTable)
	orderStore := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable)

	var metrics *aws.MetricsPublisher
	if cfg.CloudWatchClient != nil {
		metrics = aws.NewMetricsPublisher(cfg.CloudWatchClient, cfg.MetricsNamespace)
	}
	count := func(ctx context.Context, outcome string) {
		if metrics == nil {
			return
		}
		if err := metrics.CountCheckout(ctx, outcome); err != nil {
			logger.L().Warn("Failed to emit checkout metric", zap.Error(err))
		}
	}

	r.POST("/api/checkout", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		cart := make(map[string]checkout.CartLine, len(req.Cart))
		for id, line := range req.Cart {
			cart[id] = checkout.CartLine{Quantity: line.Quantity}
		}

		receipt, err := checkoutSvc.PlaceOrder(ctx, checkout.Input{
			Cart:     cart,
			FullName: req.FullName,
			Address:  req.Address,
			UserID:   req.UserID,
		})
		if err != nil {
			var stockErr *checkout.StockError
			switch {
			case errors.As(err, &stockErr):
				count(ctx, "rejected")
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": stockErr.Error()})
			case errors.Is(err, checkout.ErrTransactionConflict):
				count(ctx, "conflict")
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Checkout conflicted with another order, please try again."})
			default:
				logger.L().Error("Checkout transaction failed",
					zap.String("user_id", req.UserID),
					zap.Error(err))
				count(ctx, "error")
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "An unexpected error occurred."})
			}
			return
		}

		count(ctx, "success")
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Order created successfully!",
			"orderId": receipt.OrderID,
		})
	})

	r.GET("/api/products/:id", func(c *gin.Context) {
		p, err := productStore.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			logger.L().Error("Failed to fetch product", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "An unexpected error occurred."})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	registerPaymentRoutes(r, cfg, v, orderStore)
}
