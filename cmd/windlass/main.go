// Package main provides the windlass MCP server: browser automation
// exposed as tools over line-delimited JSON-RPC on stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/windlass-sh/windlass/pkg/browser"
	"github.com/windlass-sh/windlass/pkg/config"
	"github.com/windlass-sh/windlass/pkg/logging"
	"github.com/windlass-sh/windlass/pkg/mcp"
	"github.com/windlass-sh/windlass/pkg/tools"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.windlass/config.yaml)")
	headless := flag.Bool("headless", false, "launch browsers without a visible window")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("windlass %s\n", version)
		return
	}

	if err := run(*configPath, *headless); err != nil {
		fmt.Fprintf(os.Stderr, "windlass: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, headlessFlag bool) error {
	log, err := logging.NewLogger("main")
	if err != nil {
		// The fallback logger writes to stderr; the server still works.
		log.Warnf("file logging unavailable: %v", err)
	}
	defer log.Close()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	headless := cfg.Browser.Headless || headlessFlag

	// The driver is constructed lazily on first acquisition so the
	// server starts instantly and works for catalog-only sessions even
	// with no browser installed.
	conn := browser.NewManager(
		func() (browser.Driver, error) {
			return browser.NewPlaywrightDriver(headless, log.Writer())
		},
		browser.Options{
			DebugPort:  cfg.Browser.DebugPort,
			ProfileDir: cfg.ResolveProfileDir(),
			MaxPages:   cfg.Browser.MaxPages,
		},
		log,
	)
	cdp := browser.NewCDPManager(conn, log)

	// A replaced browser invalidates any cached debug session.
	conn.OnDisconnect(cdp.Reset)

	deps := &tools.Deps{Conn: conn, CDP: cdp, Log: log}
	registry := tools.NewRegistry(deps, cfg.Extensions, log)

	server := mcp.NewServer(os.Stdin, os.Stdout, registry, "windlass", version, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("windlass %s started (headless=%v, debug port %d)", version, headless, cfg.Browser.DebugPort)

	err = server.Run(ctx)

	// Launched browsers die with us; attached ones are left running.
	conn.Close()

	if err != nil && err != context.Canceled {
		return fmt.Errorf("server stopped: %w", err)
	}
	log.Infof("windlass shut down")
	return nil
}
