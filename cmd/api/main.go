package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NTWKKM/ntwcoffeeroaster/internal/aws"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/config"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/handlers"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/logger"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/payment"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// The storefront endpoints are POST-only; anything else gets a 405
	// without touching storage.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method Not Allowed"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	appCfg := config.Load()
	logger.Init(appCfg.AppEnv)
	defer logger.Sync()

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		logger.L().Fatal("failed to init aws clients", zap.Error(err))
	}

	cfg := handlers.HandlerConfig{
		DynamoDBClient:   clients.DynamoDB,
		CloudWatchClient: clients.CloudWatch,
		ProductsTable:    appCfg.ProductsTable,
		OrdersTable:      appCfg.OrdersTable,
		MetricsNamespace: appCfg.MetricsNamespace,
		Gateway:          payment.NewStripeGateway(appCfg.StripeSecretKey),
		WebhookSecret:    appCfg.StripeWebhookSecret,
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if appCfg.RunLocal {
		logger.L().Info("running local server", zap.String("addr", appCfg.HTTPAddr))
		if err := r.Run(appCfg.HTTPAddr); err != nil {
			logger.L().Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
