package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/NTWKKM/ntwcoffeeroaster/internal/aws"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/catalog"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/config"
	"github.com/NTWKKM/ntwcoffeeroaster/internal/logger"
)

// Loads a JSON array of products into the products table. Intended for dev
// and demo environments; checkout never creates products.
func main() {
	file := flag.String("file", "products.json", "path to a JSON array of products")
	flag.Parse()

	appCfg := config.Load()
	logger.Init(appCfg.AppEnv)
	defer logger.Sync()

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.L().Fatal("failed to read products file", zap.String("file", *file), zap.Error(err))
	}

	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		logger.L().Fatal("failed to parse products file", zap.Error(err))
	}

	ctx := context.Background()
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		logger.L().Fatal("failed to init aws clients", zap.Error(err))
	}

	store := catalog.NewStore(clients.DynamoDB, appCfg.ProductsTable)
	for _, p := range products {
		if err := store.Put(ctx, p); err != nil {
			logger.L().Fatal("failed to seed product", zap.String("product_id", p.ProductID), zap.Error(err))
		}
		logger.L().Info("seeded product",
			zap.String("product_id", p.ProductID),
			zap.Int("stock", p.Stock))
	}
}
