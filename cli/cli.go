// Package cli provides the command-line interface for the n4games widget
// catalog. It exports Run() and RunWithHooks() to allow extension by
// wrapper projects.
package cli

import (
	"fmt"
	"io"
	"os"
)

// Version of the catalog server.
const Version = "0.1.0"

// Output streams, replaced by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Hooks allows extending the CLI with additional commands.
type Hooks struct {
	// BeforeDispatch is called before command dispatch.
	// Return (handled=true, exitCode) to skip normal dispatch.
	BeforeDispatch func(command string, args []string) (handled bool, exitCode int)

	// CustomHelp returns additional help text to append.
	CustomHelp func() string

	// CustomVersion returns version info to append (optional).
	CustomVersion func() string
}

// Run executes the CLI with the given arguments.
// Returns exit code (0 = success, non-zero = error).
func Run(args []string) int {
	return RunWithHooks(args, nil)
}

// RunWithHooks executes CLI with extension hooks.
func RunWithHooks(args []string, hooks *Hooks) int {
	if len(args) < 1 {
		return runServe(args)
	}

	command := args[0]
	cmdArgs := args[1:]

	// Let hooks intercept first
	if hooks != nil && hooks.BeforeDispatch != nil {
		if handled, code := hooks.BeforeDispatch(command, cmdArgs); handled {
			return code
		}
	}

	switch command {
	case "serve":
		return runServe(cmdArgs)
	case "list":
		return runList(cmdArgs)
	case "resolve":
		return runResolve(cmdArgs)
	case "bundles":
		return runBundles(cmdArgs)
	case "check":
		return runCheck(cmdArgs)
	case "mcp":
		return runMCP(cmdArgs)
	case "help", "-h", "--help":
		printHelp(hooks)
		return 0
	case "version", "-v", "--version":
		printVersion(hooks)
		return 0
	default:
		// Check if it's a flag (starts with -)
		if len(command) > 0 && command[0] == '-' {
			return runServe(args)
		}
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printHelp(hooks)
		return 1
	}
}

func printHelp(hooks *Hooks) {
	fmt.Fprintln(stdout, `n4games widget catalog

Usage: n4games [command] [options]

Server Commands:
  serve           Serve the catalog over HTTP and WebSocket (default)
  mcp             Serve the catalog to MCP clients on stdio

Catalog Commands:
  list            List registered widget ids
  resolve <id>    Show a widget's script, bundle and stylesheet
  bundles         List script bundles
  check           Load and validate the manifest

Options:
  --host          HTTP listen address (default: 0.0.0.0)
  --port          HTTP listen port (default: 8080)
  --manifest      Widget manifest: .toml, .lua or .hcl (default: built-in)
  --watch         Hot-load widgets appended to the manifest
  --late          Accept registrations after startup
  --debounce      Manifest reload delay (default: 100ms)
  --log-level     Log level: debug, info, warn, error
  --dir           Base directory containing config/config.toml
  -v, -vv, -vvv   Verbosity

Examples:
  n4games serve --port 8080
  n4games serve --manifest widgets.toml --watch
  n4games resolve tetris
  n4games check --manifest arcade.lua`)

	if hooks != nil && hooks.CustomHelp != nil {
		fmt.Fprintln(stdout, hooks.CustomHelp())
	}
}

func printVersion(hooks *Hooks) {
	fmt.Fprintf(stdout, "n4games v%s\n", Version)
	if hooks != nil && hooks.CustomVersion != nil {
		fmt.Fprintln(stdout, hooks.CustomVersion())
	}
}
