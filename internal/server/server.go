package server

import (
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/kode4food/learnable/internal/backend"
	"github.com/kode4food/learnable/internal/store"
	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/internal/wizard/classes"
	"github.com/kode4food/learnable/internal/wizard/nccd"
	"github.com/kode4food/learnable/pkg/util"
)

// Server implements the HTTP wizard service
type Server struct {
	flows   *Registry
	store   store.Store
	classes *classes.Wizard
	reports *nccd.Wizard
	hub     *wizard.Hub
	sockets util.Set[*Client]
	mu      sync.Mutex
}

// NewServer creates a wizard service over a backend client. Each class
// setup keeps its created class id under its own key in kv
func NewServer(
	cl *backend.Client, kv store.Store, hub *wizard.Hub, maxFlows int,
) *Server {
	return &Server{
		flows:   NewRegistry(maxFlows),
		store:   kv,
		classes: classes.New(cl, nil),
		reports: nccd.New(cl),
		hub:     hub,
		sockets: util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)

	wiz := router.Group("/wizard")
	{
		wiz.POST("/classes", s.startClassSetup)
		wiz.POST("/nccd", s.startNCCDReport)

		wiz.GET("/ws", s.handleWebSocket)

		wiz.GET("/:flowID", s.getFlow)
		wiz.DELETE("/:flowID", s.closeFlow)
		wiz.PUT("/:flowID/values/:stepKey", s.setValues)
		wiz.POST("/:flowID/files/:stepKey/:field", s.uploadFile)
		wiz.POST("/:flowID/advance", s.advance)
		wiz.POST("/:flowID/skip", s.skip)
		wiz.POST("/:flowID/back", s.back)
	}

	return router
}

// Flows returns the registry of running flows
func (s *Server) Flows() *Registry {
	return s.flows
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := s.sockets.Items()
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
