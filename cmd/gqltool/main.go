package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/saturnines/graphql-agent-tool/pkg/adapter/mcptool"
	"github.com/saturnines/graphql-agent-tool/pkg/agenttool"
	"github.com/saturnines/graphql-agent-tool/pkg/toolset"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string
	verbose    bool
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "gqltool",
		Short: "Expose pre-defined GraphQL operations as agent tools",
		Long: `gqltool loads a YAML toolset of GraphQL queries and mutations and lets you
inspect them, call them directly, serve them over MCP or hand them to Claude.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "tools.yaml", "path to the toolset file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every invocation")

	root.AddCommand(listCmd())
	root.AddCommand(describeCmd())
	root.AddCommand(invokeCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(askCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRegistry() (*toolset.Registry, error) {
	registry, err := toolset.Load(configPath, toolset.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", configPath, err)
	}
	return registry, nil
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tool names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry()
			if err != nil {
				return err
			}
			for _, name := range registry.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name>",
		Short: "Print a tool's description and input schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry()
			if err != nil {
				return err
			}
			tool, ok := registry.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", toolset.ErrUnknownTool, args[0])
			}

			schema, err := json.MarshalIndent(tool.InputSchema(), "", "  ")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n%s\n\n%s\n", tool.Name(), tool.Description(), schema)
			return nil
		},
	}
}

func invokeCmd() *cobra.Command {
	var vars string

	cmd := &cobra.Command{
		Use:   "invoke <name>",
		Short: "Call a tool once and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !json.Valid([]byte(vars)) {
				return fmt.Errorf("--vars is not valid JSON: %s", vars)
			}
			input := json.RawMessage(fmt.Sprintf(`{"variables":%s}`, vars))
			result, err := registry.Invoke(ctx, args[0], input)
			if err != nil {
				return err
			}

			text, err := agenttool.ResultText(result)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&vars, "vars", "{}", "operation variables as a JSON object")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the toolset over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry()
			if err != nil {
				return err
			}

			s, err := mcptool.NewServer("gqltool", version, registry.Tools()...)
			if err != nil {
				return err
			}
			logger.Info("serving MCP on stdio", "tools", len(registry.Names()))
			return server.ServeStdio(s)
		},
	}
}
