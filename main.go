package main

import (
	"context"

	"github.com/locvowork/sales_bonus/internal/bootstrap"
	"github.com/locvowork/sales_bonus/internal/logger"
)

func main() {
	ctx := context.Background()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application: %v", err)
		panic(err)
	}
	defer app.Close()

	logger.InfoLog(ctx, "Starting sales bonus API")
	if err := app.Serve(); err != nil {
		logger.ErrorLog(ctx, "Server stopped: %v", err)
	}
}
