package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/recompletion-service/internal/utils"
	"github.com/SAP-F-2025/recompletion-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	recompletionHandler *RecompletionHandler
	logger              utils.Logger
}

func NewHandlerManager(deps RecompletionDeps, validator *validator.Validator, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		recompletionHandler: NewRecompletionHandler(deps, validator, logger),
		logger:              logger,
	}
}

// NewRouter builds the engine with the standard middleware chain and every route.
func (hm *HandlerManager) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestContext(), utils.ContextLogger(hm.logger), utils.LoggerMiddleware(hm.logger))
	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1", Authenticate())
	{
		courses := v1.Group("/courses/:course_id/recompletion")
		{
			courses.GET("/settings", hm.recompletionHandler.GetSettings)
			courses.PUT("/settings", hm.recompletionHandler.UpdateSettings)
			courses.POST("/users/:user_id/reset", hm.recompletionHandler.ResetUser)
			courses.POST("/reset", hm.recompletionHandler.ResetUsers)
			courses.GET("/resets", hm.recompletionHandler.ListResets)
			courses.GET("/archive/export", hm.recompletionHandler.ExportArchive)
		}

		recompletion := v1.Group("/recompletion")
		{
			recompletion.POST("/schedule/preview", hm.recompletionHandler.PreviewSchedule)
			recompletion.POST("/sweep", hm.recompletionHandler.RunSweep)
			recompletion.PUT("/site-settings", hm.recompletionHandler.UpdateSiteSettings)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "recompletion-service",
	})
}
