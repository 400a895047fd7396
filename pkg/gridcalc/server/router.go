package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const ApiVersion = "v1"

// SetupRouter registers the HTTP routes of the controller.
func SetupRouter(controller *Controller) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	apiRouterGroup := router.Group("/api/" + ApiVersion)
	apiRouterGroup.POST("/commands", controller.CommandsAction)
	apiRouterGroup.GET("/state", controller.GetStateAction)
	apiRouterGroup.GET("/cells/:ref", controller.GetCellAction)
	apiRouterGroup.POST("/undo", controller.UndoAction)
	apiRouterGroup.POST("/redo", controller.RedoAction)

	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "health")
	})

	return router
}
