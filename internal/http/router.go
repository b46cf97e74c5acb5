package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/pricehawk/internal/config"
	"github.com/iyhunko/pricehawk/internal/http/controller"
	"github.com/iyhunko/pricehawk/internal/http/middleware"
)

func InitRouter(conf *config.Config, server *gin.Engine, ctr *controller.Controller, trackerCtr *controller.TrackerController) *gin.Engine {
	httpMiddleware := middleware.New(conf)

	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery())
	server.Use(middleware.Logger())
	server.Use(httpMiddleware.CORS())

	server.GET("/ping", ctr.Ping)
	server.GET("/health", ctr.Health)

	server.POST("/track", trackerCtr.Track)

	products := server.Group("/products")
	{
		products.GET("", trackerCtr.ListProducts)
		products.GET("/:id", trackerCtr.GetProduct)
		products.GET("/:id/analytics", trackerCtr.Analytics)
	}

	return server
}
