package cmd

import (
	"github.com/huangsam/prodscore/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the prodscore MCP server",
	Long: `Launch an MCP server on stdio that lets agents validate weights and bands,
list factors, and score CSV tables through standard tools.

The config file, environment variables and flags set the base configuration.
Each tool call can override weights and bands for that call only.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr, so stdout stays clean for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
