package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/dinoprep/internal/scan"
)

var agentCmd = &cobra.Command{
	Use:   "agent [data-root]",
	Short: "Expose dataset structure to LLM agents over MCP",
	Long: `Runs an MCP stdio server with read-only tools backed by the structure
scanner, so an agent can inspect a materialized dataset (objects,
anomaly types, sample counts) without shell access to the tree.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataRoot := args[0]
		if err := requireDir("data root", dataRoot); err != nil {
			return err
		}
		dataRoot, err := filepath.Abs(dataRoot)
		if err != nil {
			return err
		}

		s := server.NewMCPServer("dinoprep", "0.1.0", server.WithToolCapabilities(false))

		rescan := func() (*scan.Result, error) {
			return scan.Scan(osfs.New("/"), dataRoot)
		}

		s.AddTool(
			mcp.NewTool("list_objects",
				mcp.WithDescription("List the object categories of the dataset.")),
			func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				res, err := rescan()
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return mcp.NewToolResultText(oj.JSON(res.Objects, 2)), nil
			})

		s.AddTool(
			mcp.NewTool("object_anomalies",
				mcp.WithDescription("Anomaly types per object. Optionally restrict to one object."),
				mcp.WithString("object", mcp.Description("Object name; empty for all objects"))),
			func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				res, err := rescan()
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				if object := req.GetString("object", ""); object != "" {
					types, ok := res.Anomalies[object]
					if !ok {
						return mcp.NewToolResultError(fmt.Sprintf("unknown object %q", object)), nil
					}
					return mcp.NewToolResultText(oj.JSON(types, 2)), nil
				}
				return mcp.NewToolResultText(oj.JSON(res.Anomalies, 2)), nil
			})

		s.AddTool(
			mcp.NewTool("dataset_summary",
				mcp.WithDescription("Train/test sample counts and anomaly types per object.")),
			func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				res, err := rescan()
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				summary := make(map[string]map[string]any, len(res.Objects))
				for _, obj := range res.Objects {
					summary[obj] = map[string]any{
						"train":         res.TrainCounts[obj],
						"test":          res.TestCounts[obj],
						"anomaly_types": res.Anomalies[obj],
					}
				}
				return mcp.NewToolResultText(oj.JSON(summary, 2)), nil
			})

		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
}
