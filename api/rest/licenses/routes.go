package licenses

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/license"
)

func RegisterRoutes(router *gin.RouterGroup, manager *license.Manager) {
	router.POST("/licenses", GenerateLicenseHandler(manager))
	router.GET("/licenses", ListLicensesHandler(manager))
	router.POST("/licenses/activate", ActivateLicenseHandler(manager))
	router.DELETE("/licenses/:key", DeactivateLicenseHandler(manager))
	router.GET("/licenses/:key/validity", GetValidityHandler(manager))
}
