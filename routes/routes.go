package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noamk2004/image-to-text/config"
	"github.com/noamk2004/image-to-text/controllers"
	"github.com/noamk2004/image-to-text/middlewares"
)

func SetupRouter(ctrl *controllers.MealController, cfg *config.Config) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if cfg.JWTSecret != "" {
		api.Use(middlewares.AuthMiddleware(cfg.JWTSecret))
	}

	submission := api.Group("/submission")
	{
		submission.POST("/image", ctrl.SelectImage)
		submission.POST("/submit", ctrl.Submit)
		submission.POST("/retry", ctrl.Retry)
		submission.GET("", ctrl.SubmissionStatus)
		submission.DELETE("", ctrl.ClearSelection)
	}

	meals := api.Group("/meals")
	{
		meals.GET("", ctrl.ListMeals)
		meals.GET("/totals", ctrl.Totals)
		meals.DELETE("/:id", ctrl.DeleteMeal)
	}

	return r
}
