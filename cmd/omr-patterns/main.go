package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/ironsheep/omr-patterns/internal/config"
	"github.com/ironsheep/omr-patterns/internal/pipeline"
	"github.com/ironsheep/omr-patterns/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("omr-patterns - shape-correction checks for optical music recognition")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  omr-patterns [--config file.yaml]                     Run the MCP server on stdin/stdout")
	fmt.Println("  omr-patterns check [--config file.yaml] request.json  Check one system and print the report")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println("  --config         YAML thresholds, merged over the defaults")
	fmt.Println()
	fmt.Println("The check request is a JSON object with image_path, scale, staves and")
	fmt.Println("optional region and assignments. Use - to read it from stdin.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  OMR_PATTERNS_LOG_LEVEL=debug    Enable debug logging")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("omr-patterns %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol and reports)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	level := slog.LevelInfo
	if os.Getenv("OMR_PATTERNS_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
		log.Printf("OMR Patterns v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if len(os.Args) > 1 && os.Args[1] == "check" {
		if err := runCheck(os.Args[2:], logger); err != nil {
			log.Fatalf("Check failed: %v", err)
		}
		return
	}

	fs := flag.NewFlagSet("omr-patterns", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	fs.Parse(os.Args[1:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runCheck checks the system described by a request file and prints the
// report on stdout.
func runCheck(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one request file, got %d", fs.NArg())
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	req, err := readRequest(fs.Arg(0))
	if err != nil {
		return err
	}

	res, _, err := pipeline.New(cfg, nil, nil, logger).Check(*req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

func readRequest(path string) (*pipeline.Request, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req pipeline.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &req, nil
}
