package api

import (
	"github.com/gin-gonic/gin"

	"github.com/joshbakergf/lead-manager-sub001/pkg/middleware"
)

// NewRouter wires every route of the service
func NewRouter(h *Handlers, crm, payments Forwarder, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.CORS(allowedOrigins...))

	router.GET("/health", h.HealthCheck)
	router.POST("/submit", h.HandleSubmit)
	router.GET("/submissions/orphaned", h.HandleListOrphaned)
	router.GET("/submissions/:id", h.HandleGetSubmission)

	RegisterProxy(router.Group("/api/crm"), crm, CRMProxyRoutes)
	RegisterProxy(router.Group("/api/payments"), payments, PaymentProxyRoutes)

	return router
}
