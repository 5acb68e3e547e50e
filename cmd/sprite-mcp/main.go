package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/sprite-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("sprite-tools-mcp - MCP server for chroma-key sprite background removal")
	fmt.Println()
	fmt.Println("Usage: sprite-tools-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  SPRITE_MCP_LOG_LEVEL=debug   Log requests and batch progress to stderr")
	fmt.Println("  SPRITE_MCP_WORKERS=N         Batch worker count (default: number of CPUs)")
	fmt.Println("  SPRITE_MCP_TOLERANCE=F       Background colour tolerance (default 30)")
	fmt.Println("  SPRITE_MCP_EDGE_SIZE=N       Edge sampling patch size (default 10)")
	fmt.Println("  SPRITE_MCP_PADDING=N         Padding kept when cropping (default 0)")
	fmt.Println("  SPRITE_MCP_NO_CROP=true      Disable auto-crop")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("sprite-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown argument: %s\n\n", os.Args[1])
			usage()
			os.Exit(2)
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := server.ConfigFromEnv()
	if cfg.Debug {
		log.Printf("Sprite MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Defaults: %+v, workers=%d", cfg.Defaults, cfg.Workers)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
