package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
)

// Health reports liveness together with the actions each mounted service accepts.
func Health(routers Routers) gin.HandlerFunc {
	services := map[string][]string{}
	for _, r := range []*api.Router{routers.Access, routers.Subscription, routers.Notification} {
		if r != nil {
			services[r.Service()] = r.Actions()
		}
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok", Services: services})
	}
}

func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
