package config

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pevans/seminarfed/dialect"
	"github.com/robfig/cron/v3"
)

// ConfigAPIServer represents the HTTP API server for configuration
// management.
type ConfigAPIServer struct {
	store    *ConfigStore
	registry *dialect.Registry
}

// NewConfigAPIServer creates a new config API server. Dialect names are
// validated against registry.
func NewConfigAPIServer(store *ConfigStore, registry *dialect.Registry) *ConfigAPIServer {
	return &ConfigAPIServer{
		store:    store,
		registry: registry,
	}
}

// SetupRouter configures the Gin router with config API routes.
func (c *ConfigAPIServer) SetupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(CORS())
	c.RegisterRoutes(router)
	return router
}

// RegisterRoutes adds the config routes to an existing router.
func (c *ConfigAPIServer) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1/meta")
	api.GET("/config", c.HandleGetConfig)
	api.PUT("/config", c.HandleUpdateConfig)
}

// CORS allows any origin to call the API.
func CORS() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if ctx.Request.Method == "OPTIONS" {
			ctx.AbortWithStatus(http.StatusOK)
			return
		}

		ctx.Next()
	}
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// HandleGetConfig handles GET /api/v1/meta/config.
func (c *ConfigAPIServer) HandleGetConfig(ctx *gin.Context) {
	config, err := c.store.GetConfig()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to retrieve configuration"))
		return
	}

	ctx.JSON(http.StatusOK, config)
}

// HandleUpdateConfig handles PUT /api/v1/meta/config.
func (c *ConfigAPIServer) HandleUpdateConfig(ctx *gin.Context) {
	var updates Config
	if err := ctx.ShouldBindJSON(&updates); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	if updates.DefaultDialect != "" {
		if _, err := c.registry.Lookup(updates.DefaultDialect); err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse("validation_error", err.Error()))
			return
		}
	}

	if updates.ImportSchedule != "" {
		if err := ValidateSchedule(updates.ImportSchedule); err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse("validation_error", err.Error()))
			return
		}
	}

	if err := c.store.UpdateConfig(&updates); err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to update configuration"))
		return
	}

	// Empty fields keep their stored values, so answer with the merged view.
	config, err := c.store.GetConfig()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to retrieve configuration"))
		return
	}

	ctx.JSON(http.StatusOK, config)
}

// ValidateSchedule checks that schedule is a standard five-field cron
// expression or a descriptor such as @hourly.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid import_schedule: %w", err)
	}
	return nil
}
