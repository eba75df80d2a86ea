// Command toolserver serves the reference tools over MCP on stdin/stdout.
// Build it and pass the binary path to the agent.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/effective-security/xlog"
	"github.com/petasbytes/mcp-agent/internal/toolserver"
)

func main() {
	// stdout carries the protocol; logs must stay on stderr.
	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	xlog.SetGlobalLogLevel(xlog.WARNING)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := toolserver.ServeStdio(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "toolserver: %v\n", err)
		os.Exit(1)
	}
}
