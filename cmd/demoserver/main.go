// Command demoserver starts a fixture job board whose postings carry known
// Last-Modified ages, for trying the checker end to end.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/trusted-tools/ghostjobs/internal/demoserver"
	"github.com/trusted-tools/ghostjobs/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()
	logger := logging.NewStdoutLogger("demoserver")

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			fmt.Fprintf(os.Stderr, "Invalid port: %s\n", os.Args[1])
			os.Exit(2)
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   Ghost Job Checker - Demo Job Board")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Postings served:")
	for _, p := range demoserver.DefaultPostings() {
		fmt.Printf("  %-15s %s\n", p.Path, p.Description)
	}
	fmt.Println()

	server := demoserver.NewDemoServer(cfg, logger)
	if err := server.Start(); err != nil {
		logger.Error("demo server stopped", logging.Err(err))
		os.Exit(1)
	}
}
