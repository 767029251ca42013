package main

import (
	"flag"
	"os"

	"github.com/platefull/platefull-api/internal/config"
	"github.com/platefull/platefull-api/internal/db"
	"github.com/platefull/platefull-api/internal/loader"
	"github.com/platefull/platefull-api/internal/logger"
	"github.com/platefull/platefull-api/internal/repository"
	"go.uber.org/zap"
)

// Entry point for the catalog loader. Loads the ingredient and tag catalogs
// from files into the database with get-or-create semantics, so re-running
// it is safe.
func main() {
	ingredientsPath := flag.String("ingredients", "", "path to an ingredient catalog file (.csv or .json)")
	tagsPath := flag.String("tags", "", "path to a tag catalog file (.csv)")
	flag.Parse()

	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)
	defer logger.Sync()

	if *ingredientsPath == "" && *tagsPath == "" {
		logger.Get().Fatal("nothing to load: pass -ingredients and/or -tags")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	}
	if cfg.EnvVars.DatabaseUrl == "" {
		logger.Get().Fatal("$DatabaseUrl must be set")
	}

	database, err := db.New(cfg)
	if err != nil {
		logger.Get().Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := database.DB()
	if err != nil {
		logger.Get().Fatal("failed to get underlying sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if *ingredientsPath != "" {
		ingredientLoader := loader.NewIngredientLoader(repository.NewIngredientRepository(database))
		result, err := ingredientLoader.LoadFile(*ingredientsPath)
		if err != nil {
			logger.Get().Fatal("failed to load ingredients",
				zap.String("path", *ingredientsPath), zap.Error(err))
		}
		logger.Get().Info("ingredients loaded",
			zap.String("path", *ingredientsPath),
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped))
	}

	if *tagsPath != "" {
		tagLoader := loader.NewTagLoader(repository.NewTagRepository(database))
		result, err := tagLoader.LoadFile(*tagsPath)
		if err != nil {
			logger.Get().Fatal("failed to load tags",
				zap.String("path", *tagsPath), zap.Error(err))
		}
		logger.Get().Info("tags loaded",
			zap.String("path", *tagsPath),
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped))
	}
}
