// Package server exposes the engine over REST using gin. The transport is
// a thin shell: every operation delegates to the service layer and maps
// sentinel errors onto HTTP status codes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/actionsemantics/sage/pkg/service"
)

// Server holds the state for the REST API server.
type Server struct {
	graphService *service.GraphService
	router       *gin.Engine
}

// NewServer creates a new Server instance.
func NewServer(svc *service.GraphService) *Server {
	r := gin.Default()
	s := &Server{
		graphService: svc,
		router:       r,
	}
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/v1/graphs", s.handleGraphs)

	s.router.GET("/v1/verbs", s.handleListVerbs)
	s.router.GET("/v1/verbs/:gerund", s.handleResolveVerb)
	s.router.POST("/v1/verbs", s.handleRegisterVerb)

	s.router.GET("/v1/roles", s.handleListRoles)
	s.router.GET("/v1/roles/:name", s.handleResolveRole)
	s.router.GET("/v1/roles/:name/capabilities", s.handleRoleCapabilities)
	s.router.POST("/v1/roles", s.handleRegisterRole)

	s.router.GET("/v1/check", s.handleCheck)

	s.router.POST("/v1/traverse", s.handleTraverse)
	s.router.POST("/v1/paths", s.handleFindPaths)
	s.router.GET("/v1/neighbors", s.handleNeighbors)

	s.router.POST("/v1/triples", s.handleAddTriple)
	s.router.DELETE("/v1/triples/:id", s.handleDeleteTriple)
	s.router.POST("/v1/query", s.handleQuery)
	s.router.GET("/v1/stats", s.handleStats)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}
