// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the gin engine.
func NewRouter(h *Handler, maxUploadBytes int64) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = maxUploadBytes

	v1 := r.Group("/api/v1")
	{
		v1.POST("/assessments", h.CreateAssessment)
		v1.GET("/tasks", h.ListTasks)
		v1.GET("/tasks/:task_id", h.DescribeTask)
	}

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
