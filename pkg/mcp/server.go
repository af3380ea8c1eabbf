// Package mcp exposes the engine over the Model Context Protocol on stdio,
// so agent runtimes can run capability checks and graph queries as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/actionsemantics/sage/pkg/graph"
	"github.com/actionsemantics/sage/pkg/registry"
	"github.com/actionsemantics/sage/pkg/service"
)

// defaultGraph is the graph MCP tools operate on; the stdio server is
// single-tenant by convention.
const defaultGraph = "default"

// MCPServer wraps the graph service to expose it via MCP.
type MCPServer struct {
	graph *service.GraphService
}

// Run starts the MCP server on Stdio.
func Run(ctx context.Context, svc *service.GraphService) error {
	s := server.NewMCPServer(
		"SAGE-Backend",
		"0.1.0",
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	ms := &MCPServer{graph: svc}

	// --- Resources ---

	s.AddResource(
		mcp.NewResource(
			"sage://registry/summary",
			"Registry Summary",
			mcp.WithResourceDescription("Verb and role catalog summary plus graph statistics"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleRegistrySummary,
	)

	// --- Tools ---

	s.AddTool(
		mcp.NewTool(
			"check_capability",
			mcp.WithDescription("Check whether a role is permitted to perform a verb (action in gerund form)."),
			mcp.WithString("role", mcp.Required(), mcp.Description("Role name, e.g. 'accountant'")),
			mcp.WithString("verb", mcp.Required(), mcp.Description("Verb gerund, e.g. 'invoicing'")),
		),
		ms.handleCheckCapability,
	)

	s.AddTool(
		mcp.NewTool(
			"resolve_verb",
			mcp.WithDescription("Look up a verb definition by its gerund."),
			mcp.WithString("gerund", mcp.Required(), mcp.Description("The canonical -ing form of the verb")),
		),
		ms.handleResolveVerb,
	)

	s.AddTool(
		mcp.NewTool(
			"resolve_role",
			mcp.WithDescription("Look up a role definition, including its effective capability set."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Role name")),
		),
		ms.handleResolveRole,
	)

	s.AddTool(
		mcp.NewTool(
			"list_verbs",
			mcp.WithDescription("List the verb catalog, optionally filtered by category."),
			mcp.WithString("category", mcp.Description("Optional category filter, e.g. 'supply_chain'")),
		),
		ms.handleListVerbs,
	)

	s.AddTool(
		mcp.NewTool(
			"list_roles",
			mcp.WithDescription("List the role catalog."),
		),
		ms.handleListRoles,
	)

	s.AddTool(
		mcp.NewTool(
			"register_verb",
			mcp.WithDescription("Register a new action verb. The gerund is derived from base_form when omitted."),
			mcp.WithString("gerund", mcp.Description("Canonical -ing form")),
			mcp.WithString("base_form", mcp.Description("Base form of the verb")),
			mcp.WithString("category", mcp.Description("Verb category")),
			mcp.WithString("danger_level", mcp.Description("safe|low|medium|high|critical (default safe)")),
		),
		ms.handleRegisterVerb,
	)

	s.AddTool(
		mcp.NewTool(
			"register_role",
			mcp.WithDescription("Register a new role with a capability list."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Role name")),
			mcp.WithString("capabilities", mcp.Required(), mcp.Description("Comma-separated verb gerunds, or *")),
			mcp.WithString("parent_role", mcp.Description("Optional parent role to inherit from")),
		),
		ms.handleRegisterRole,
	)

	s.AddTool(
		mcp.NewTool(
			"traverse_graph",
			mcp.WithDescription("Breadth-first expansion of the relationship graph from a start node."),
			mcp.WithString("start", mcp.Required(), mcp.Description("Start node reference, e.g. 'agent:alice'")),
			mcp.WithNumber("depth", mcp.Description("Expansion depth (default 2, max 10)")),
			mcp.WithString("direction", mcp.Description("forward|backward|both (default forward)")),
		),
		ms.handleTraverse,
	)

	s.AddTool(
		mcp.NewTool(
			"find_paths",
			mcp.WithDescription("Enumerate simple paths between two nodes, shortest first."),
			mcp.WithString("from", mcp.Required(), mcp.Description("Start node")),
			mcp.WithString("to", mcp.Required(), mcp.Description("Target node")),
			mcp.WithNumber("max_depth", mcp.Description("Maximum path length in edges (default 5, max 10)")),
		),
		ms.handleFindPaths,
	)

	s.AddTool(
		mcp.NewTool(
			"query_triples",
			mcp.WithDescription("Run a ?field=value pattern query, e.g. \"?subject='accountant' ?predicate=* ?object=*\"."),
			mcp.WithString("pattern", mcp.Required(), mcp.Description("Pattern string")),
		),
		ms.handleQueryTriples,
	)

	s.AddTool(
		mcp.NewTool(
			"graph_stats",
			mcp.WithDescription("Predicate and subject frequency statistics for the graph."),
		),
		ms.handleGraphStats,
	)

	// Start the server on Stdio
	slog.Info("Starting MCP server on Stdio")
	return server.ServeStdio(s)
}

// --- Resource Handlers ---

func (ms *MCPServer) handleRegistrySummary(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	verbs, err := ms.graph.ListVerbs(defaultGraph, "")
	if err != nil {
		return nil, err
	}
	roles, err := ms.graph.ListRoles(defaultGraph)
	if err != nil {
		return nil, err
	}
	stats, err := ms.graph.GetStats(ctx, defaultGraph)
	if err != nil {
		return nil, err
	}

	summary := map[string]any{
		"verb_count":   len(verbs),
		"role_count":   len(roles),
		"triple_count": stats.TripleCount,
	}
	jsonBytes, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

// --- Tool Handlers ---

func (ms *MCPServer) handleCheckCapability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	role, ok := args["role"].(string)
	if !ok {
		return mcp.NewToolResultError("role argument required"), nil
	}
	verb, ok := args["verb"].(string)
	if !ok {
		return mcp.NewToolResultError("verb argument required"), nil
	}

	decision, err := ms.graph.CheckCapability(defaultGraph, role, verb)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}
	return jsonResult(decision)
}

func (ms *MCPServer) handleResolveVerb(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	gerund, ok := args["gerund"].(string)
	if !ok {
		return mcp.NewToolResultError("gerund argument required"), nil
	}

	verb, err := ms.graph.ResolveVerb(defaultGraph, gerund)
	if err != nil {
		suggestions, _ := ms.graph.SuggestVerbs(defaultGraph, gerund)
		if len(suggestions) > 0 {
			return mcp.NewToolResultError(fmt.Sprintf("verb %q not found; did you mean: %s", gerund, strings.Join(suggestions, ", "))), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("verb %q not found", gerund)), nil
	}
	return jsonResult(verb)
}

func (ms *MCPServer) handleResolveRole(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, ok := args["name"].(string)
	if !ok {
		return mcp.NewToolResultError("name argument required"), nil
	}

	role, err := ms.graph.ResolveRole(defaultGraph, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("role %q not found", name)), nil
	}
	caps, err := ms.graph.RoleCapabilities(defaultGraph, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("capability resolution failed: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"role":                   role,
		"effective_capabilities": caps,
	})
}

func (ms *MCPServer) handleListVerbs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := stringArg(request.GetArguments(), "category")
	verbs, err := ms.graph.ListVerbs(defaultGraph, category)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}
	return jsonResult(verbs)
}

func (ms *MCPServer) handleListRoles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roles, err := ms.graph.ListRoles(defaultGraph)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}
	return jsonResult(roles)
}

func (ms *MCPServer) handleRegisterVerb(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	def := &registry.VerbDefinition{}
	def.Gerund, _ = args["gerund"].(string)
	def.BaseForm, _ = args["base_form"].(string)
	def.Category, _ = args["category"].(string)
	if dl, ok := args["danger_level"].(string); ok {
		def.DangerLevel = registry.DangerLevel(dl)
	}
	if def.Gerund == "" && def.BaseForm != "" {
		def.Gerund = registry.ToGerund(def.BaseForm)
	}

	registered, err := ms.graph.RegisterVerb(defaultGraph, def)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("registration failed: %v", err)), nil
	}
	return jsonResult(registered)
}

func (ms *MCPServer) handleRegisterRole(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, ok := args["name"].(string)
	if !ok {
		return mcp.NewToolResultError("name argument required"), nil
	}
	capsStr, ok := args["capabilities"].(string)
	if !ok {
		return mcp.NewToolResultError("capabilities argument required"), nil
	}

	var caps []string
	for _, c := range strings.Split(capsStr, ",") {
		if c = strings.TrimSpace(c); c != "" {
			caps = append(caps, c)
		}
	}

	def := &registry.RoleDefinition{Name: name, Capabilities: caps}
	def.ParentRole, _ = args["parent_role"].(string)

	registered, err := ms.graph.RegisterRole(defaultGraph, def)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("registration failed: %v", err)), nil
	}
	return jsonResult(registered)
}

func (ms *MCPServer) handleTraverse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	start, ok := args["start"].(string)
	if !ok {
		return mcp.NewToolResultError("start argument required"), nil
	}

	depth := 2
	if d, ok := args["depth"].(float64); ok {
		depth = int(d)
	}
	direction := graph.ParseDirection(stringArg(args, "direction"))

	result, err := ms.graph.Traverse(ctx, defaultGraph, start, depth, direction)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("traversal failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (ms *MCPServer) handleFindPaths(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	from, ok := args["from"].(string)
	if !ok {
		return mcp.NewToolResultError("from argument required"), nil
	}
	to, ok := args["to"].(string)
	if !ok {
		return mcp.NewToolResultError("to argument required"), nil
	}

	maxDepth := 5
	if d, ok := args["max_depth"].(float64); ok {
		maxDepth = int(d)
	}

	paths, err := ms.graph.FindPaths(ctx, defaultGraph, from, to, maxDepth)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("path search failed: %v", err)), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("No paths found."), nil
	}
	return jsonResult(paths)
}

func (ms *MCPServer) handleQueryTriples(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	pattern, ok := args["pattern"].(string)
	if !ok {
		return mcp.NewToolResultError("pattern argument required"), nil
	}

	triples, err := ms.graph.ExecuteQuery(ctx, defaultGraph, pattern)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	if len(triples) == 0 {
		return mcp.NewToolResultText("No triples matched."), nil
	}
	return jsonResult(triples)
}

func (ms *MCPServer) handleGraphStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := ms.graph.GetStats(ctx, defaultGraph)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return jsonResult(stats)
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
