package server

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/actionsemantics/sage/pkg/common/errors"
	"github.com/actionsemantics/sage/pkg/export"
	"github.com/actionsemantics/sage/pkg/graph"
	"github.com/actionsemantics/sage/pkg/registry"
)

// handleError maps service errors onto HTTP responses.
func handleError(c *gin.Context, err error) {
	appErr := errors.MapError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message, "detail": err.Error()})
}

// graphID reads the graph query parameter, defaulting to "default".
func graphID(c *gin.Context) string {
	if id := c.Query("graph"); id != "" {
		return id
	}
	return "default"
}

// handleGraphs returns the hosted graphs.
func (s *Server) handleGraphs(c *gin.Context) {
	graphs, err := s.graphService.ListGraphs()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, graphs)
}

// handleListVerbs returns the verb catalog, optionally filtered by category.
func (s *Server) handleListVerbs(c *gin.Context) {
	verbs, err := s.graphService.ListVerbs(graphID(c), c.Query("category"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, verbs)
}

// handleResolveVerb resolves one verb by gerund. On a miss the response
// carries "did you mean" suggestions.
func (s *Server) handleResolveVerb(c *gin.Context) {
	gerund := c.Param("gerund")
	verb, err := s.graphService.ResolveVerb(graphID(c), gerund)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			suggestions, _ := s.graphService.SuggestVerbs(graphID(c), gerund)
			c.JSON(http.StatusNotFound, gin.H{
				"error":       "verb not found",
				"gerund":      gerund,
				"suggestions": suggestions,
			})
			return
		}
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, verb)
}

// handleRegisterVerb registers a new verb definition.
func (s *Server) handleRegisterVerb(c *gin.Context) {
	var def registry.VerbDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	registered, err := s.graphService.RegisterVerb(graphID(c), &def)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registered)
}

// handleListRoles returns the role catalog.
func (s *Server) handleListRoles(c *gin.Context) {
	roles, err := s.graphService.ListRoles(graphID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// handleResolveRole resolves one role by name.
func (s *Server) handleResolveRole(c *gin.Context) {
	role, err := s.graphService.ResolveRole(graphID(c), c.Param("name"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

// handleRoleCapabilities returns the effective capability set of a role,
// inherited capabilities included.
func (s *Server) handleRoleCapabilities(c *gin.Context) {
	caps, err := s.graphService.RoleCapabilities(graphID(c), c.Param("name"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": c.Param("name"), "capabilities": caps})
}

// handleRegisterRole registers a new role definition.
func (s *Server) handleRegisterRole(c *gin.Context) {
	var def registry.RoleDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	registered, err := s.graphService.RegisterRole(graphID(c), &def)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registered)
}

// handleCheck runs a capability check for a (role, verb) pair. Denials are
// 200 responses with allowed=false; only missing parameters or registry
// failures are errors.
func (s *Server) handleCheck(c *gin.Context) {
	role := c.Query("role")
	verb := c.Query("verb")
	if role == "" || verb == "" {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Missing role or verb parameter", nil))
		return
	}

	decision, err := s.graphService.CheckCapability(graphID(c), role, verb)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

// handleTraverse runs a breadth-first expansion. With ?format=d3 the result
// is shaped for force-graph rendering.
func (s *Server) handleTraverse(c *gin.Context) {
	var req struct {
		Start     string `json:"start"`
		Depth     int    `json:"depth"`
		Direction string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}
	if req.Start == "" {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Missing start node", nil))
		return
	}

	result, err := s.graphService.Traverse(c.Request.Context(), graphID(c), req.Start, req.Depth, graph.ParseDirection(req.Direction))
	if err != nil {
		handleError(c, err)
		return
	}

	if c.Query("format") == "d3" {
		c.JSON(http.StatusOK, export.FromTraversal(result))
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleFindPaths enumerates simple paths between two nodes.
func (s *Server) handleFindPaths(c *gin.Context) {
	var req struct {
		From     string `json:"from"`
		To       string `json:"to"`
		MaxDepth int    `json:"max_depth"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}
	if req.From == "" || req.To == "" {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Missing from or to node", nil))
		return
	}

	paths, err := s.graphService.FindPaths(c.Request.Context(), graphID(c), req.From, req.To, req.MaxDepth)
	if err != nil {
		handleError(c, err)
		return
	}

	if c.Query("format") == "d3" {
		c.JSON(http.StatusOK, export.FromPaths(paths))
		return
	}
	c.JSON(http.StatusOK, gin.H{"paths": paths, "count": len(paths)})
}

// handleNeighbors returns the direct neighbors of a node.
func (s *Server) handleNeighbors(c *gin.Context) {
	node := c.Query("node")
	if node == "" {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Missing node parameter", nil))
		return
	}

	neighbors, err := s.graphService.GetNeighbors(c.Request.Context(), graphID(c), node, graph.ParseDirection(c.Query("direction")))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"node": node, "neighbors": neighbors})
}

// handleAddTriple writes a triple.
func (s *Server) handleAddTriple(c *gin.Context) {
	var t graph.Triple
	if err := c.ShouldBindJSON(&t); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	if err := s.graphService.AddTriple(graphID(c), &t); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// handleDeleteTriple soft-deletes a triple.
func (s *Server) handleDeleteTriple(c *gin.Context) {
	if err := s.graphService.DeleteTriple(graphID(c), c.Param("id"), c.Query("by")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleQuery executes a ?field=value pattern query.
func (s *Server) handleQuery(c *gin.Context) {
	var req struct {
		Pattern string `json:"pattern"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	triples, err := s.graphService.ExecuteQuery(c.Request.Context(), graphID(c), req.Pattern)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"triples": triples, "count": len(triples)})
}

// handleStats returns predicate/subject frequency aggregations.
func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.graphService.GetStats(c.Request.Context(), graphID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
