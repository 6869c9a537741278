package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hpungsan/sidenote/internal/config"
	"github.com/hpungsan/sidenote/internal/db"
	"github.com/hpungsan/sidenote/internal/identity"
	"github.com/hpungsan/sidenote/internal/index"
	"github.com/hpungsan/sidenote/internal/mcp"
	"github.com/hpungsan/sidenote/internal/mirror"
	"github.com/hpungsan/sidenote/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"set": true, "get": true, "rm": true, "exists": true,
	"ls": true, "web": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
     _     _                  _
 ___(_) __| | ___ _ __   ___ | |_ ___
/ __| |/ _` + "`" + ` |/ _ \ '_ \ / _ \| __/ _ \
\__ \ | (_| |  __/ | | | (_) | ||  __/
|___/_|\__,_|\___|_| |_|\___/ \__\___|

  File annotations that survive renames

  Usage: sidenote <command> [options]
         sidenote --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any service init (none needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".sidenote")

	workDir, err := os.Getwd()
	if err != nil {
		workDir = homeDir
	}

	cfg, err := config.LoadWithRepo(baseDir, workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// A record store that cannot open degrades the process to the
	// mirror channel; it does not abort it.
	database, err := db.Init(baseDir)
	if err != nil {
		logger.Warn("record store unavailable, mirror only", "error", err)
		database = nil
	} else {
		db.ConfigurePool(database, cfg)
		defer database.Close()
	}

	idx := index.New(database, identity.NewResolver())
	coord := store.New(idx, mirror.New(cfg), cfg, logger)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(coord, idx)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'sidenote --help' for usage.\n")
		os.Exit(1)
	}

	// Warn about unknown disabled tool names before serving
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown disabled tools in config", "names", unknown)
	}

	// MCP server mode (default)
	if err := mcp.Run(coord, idx, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
