package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/actionsemantics/sage/internal/manager"
	"github.com/actionsemantics/sage/pkg/mcp"
	"github.com/actionsemantics/sage/pkg/server"
	"github.com/actionsemantics/sage/pkg/service"
)

func main() {
	mcpMode := flag.Bool("mcp", false, "run MCP server on stdio instead of the REST API")
	addr := flag.String("addr", ":8080", "REST API listen address")
	readOnly := flag.Bool("read-only", false, "open graph stores in read-only mode")
	strict := flag.Bool("strict-neighbors", false, "fail traversals on neighbor lookup errors instead of degrading")

	flag.Parse()

	_ = godotenv.Load()

	// Data folder is the first positional argument, ./data by default.
	dataDir := "./data"
	if args := flag.Args(); len(args) >= 1 {
		dataDir = args[0]
	}
	if env := os.Getenv("SAGE_DATA_DIR"); env != "" && dataDir == "./data" {
		dataDir = env
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	// Make sure the default graph exists so first-run works out of the box.
	if !*readOnly {
		if err := os.MkdirAll(filepath.Join(dataDir, "default"), 0o755); err != nil {
			log.Fatalf("failed to create data dir: %v", err)
		}
	}

	mgr := manager.NewEngineManager(dataDir, *readOnly)
	defer mgr.CloseAll()

	svc := service.NewGraphService(mgr)
	svc.StrictNeighbors = *strict

	if *mcpMode {
		if err := mcp.Run(context.Background(), svc); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}
		return
	}

	slog.Info("starting REST API", "addr", *addr, "data", dataDir, "read_only", *readOnly)
	srv := server.NewServer(svc)
	if err := srv.Run(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}
