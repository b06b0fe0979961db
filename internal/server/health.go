package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/learnable"
	"github.com/kode4food/learnable/pkg/api"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service: learnable.Name,
		Version: learnable.Version,
		Status:  "healthy",
		Flows:   s.flows.Len(),
	})
}
