package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/NTWKKM/ntwcoffeeroaster/internal/logger"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/orders"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/payment/webhook"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/validation"
)

func registerPaymentRoutes(r *gin.Engine, cfg HandlerConfig, v *validatorv10.Validate, orderStore *orders.Store) {
	wh := webhook.NewHandler(orderStore, cfg.WebhookSecret)

	r.POST("/api/payments/intent", func(c *gin.Context) {
		var req validation.PaymentIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A valid amount is required."})
			return
		}
		if err := v.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A valid amount is required."})
			return
		}

		intent, err := cfg.Gateway.CreateIntent(c.Request.Context(), req.Amount)
		if err != nil {
			logger.L().Error("Failed to create payment intent", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment intent."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
	})

	r.POST("/api/payments/webhook", wh.Handle)
}
