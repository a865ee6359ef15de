package main

import (
	"net/http"

	"fleet-tracker/internal/cache"
	"fleet-tracker/internal/config"
	"fleet-tracker/internal/database"
	"fleet-tracker/internal/geocode"
	"fleet-tracker/internal/handlers"
	"fleet-tracker/internal/repositories"
	"fleet-tracker/internal/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFile)

	db, err := database.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to open locations database: %v", err)
	}

	statesDB, err := database.NewStatesDB(cfg.StatesDBPath)
	if err != nil {
		logger.Fatalf("Failed to open states database: %v", err)
	}

	locationRepo := repositories.NewLocationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	referenceRepo := repositories.NewReferenceRepository(statesDB)

	resolver := geocode.NewResolver(cfg, logger)

	var cacheClient *cache.Client
	if cfg.RedisEnabled() {
		cacheClient, err = cache.New(cfg, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer cacheClient.Close()
	}

	locationHandler := handlers.NewLocationHandler(locationRepo, resolver, cacheClient, logger)
	authHandler := handlers.NewAuthHandler(userRepo, cfg.SessionSecret, logger)
	filtersHandler := handlers.NewFiltersHandler(cfg.FiltersFile, logger)
	referenceHandler := handlers.NewReferenceHandler(referenceRepo, logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(logger)
	e.Use(middleware.Recover())

	api := e.Group("/api")
	api.POST("/location", locationHandler.ReceiveLocation)
	api.GET("/locations", locationHandler.ListLocations)
	api.GET("/latest_locations", locationHandler.LatestLocations)
	api.POST("/update_device_status", locationHandler.UpdateDeviceStatus)
	api.POST("/login", authHandler.Login)
	api.POST("/create_account", authHandler.CreateAccount)
	api.POST("/logout", authHandler.Logout)
	api.POST("/save_filters", filtersHandler.SaveFilters)
	api.GET("/load_filters", filtersHandler.LoadFilters)
	api.GET("/states_and_districts", referenceHandler.StatesAndDistricts)

	logger.Infof("HTTP server listening on :%s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server error: %v", err)
	}
}
