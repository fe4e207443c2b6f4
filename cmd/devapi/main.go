// Command devapi serves the in-memory portfolio backend on a local port so
// the folio CLI can be used without the deployed service.
//
//	FOLIO_ENV=development go run ./cmd/devapi [seed.yaml]
package main

import (
	"os"

	"folio/apitest"
	"folio/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	backend := apitest.NewBackend()

	if len(os.Args) > 1 {
		seedPath := os.Args[1]
		f, err := os.Open(seedPath)
		if err != nil {
			logger.Fatal("failed to open seed file", zap.String("path", seedPath), zap.Error(err))
		}
		projects, err := apitest.LoadSeed(f)
		f.Close()
		if err != nil {
			logger.Fatal("failed to load seed", zap.String("path", seedPath), zap.Error(err))
		}
		backend.Seed(projects...)
		logger.Info("seeded projects", zap.Int("count", len(projects)))
	}

	logger.Info("dev backend starting",
		zap.String("port", cfg.DevAPI.Port),
		zap.String("login", apitest.Email),
	)
	if err := backend.Router().Run(":" + cfg.DevAPI.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
