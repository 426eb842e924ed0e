package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kagami-ai/kagami/internal/config"
	kagamimcp "github.com/kagami-ai/kagami/internal/mcp"
)

var (
	mcpAuditLog string
	mcpWatch    bool
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", "", "Path to the hash-chained audit log (overrides config)")
	mcpCmd.Flags().BoolVar(&mcpWatch, "watch", false, "Hot-reload config on file change")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP trust-layer server for runtime integration",
	Long: "Runs kagami as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes the trust-layer tools: resolve, evaluate, review, capabilities, approve, pending.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot determine working directory: %w", err)
	}

	srv, err := kagamimcp.New(kagamimcp.Config{
		ConfigPath:   configPath,
		CWD:          cwd,
		AuditLogPath: mcpAuditLog,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	if mcpWatch {
		reloader, err := config.NewReloader(configPath, srv.Reload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config watch disabled: %v\n", err)
		} else {
			go reloader.Run(ctx)
		}
	}

	fmt.Fprintln(os.Stderr, "kagami MCP server running on stdio")
	return srv.Run(ctx)
}
