package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mcpchecker/sessionreport/pkg/config"
	"github.com/mcpchecker/sessionreport/pkg/metrics"
	"github.com/mcpchecker/sessionreport/pkg/report"
	"github.com/mcpchecker/sessionreport/pkg/runs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports and metrics as MCP tools over stdio",
		Long: `Start an MCP server on stdin/stdout exposing the session_report,
task_metrics and format_errors tools. Defaults for every tool come from
the config file.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			server := newMCPServer(cfg)
			slog.Debug("Starting MCP server", "transport", "stdio")
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}

	return cmd
}

func newMCPServer(cfg *config.Config) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "sessionreport",
		Version: version,
	}, nil)

	registerSessionReportTool(server, cfg)
	registerTaskMetricsTool(server, cfg)
	registerFormatErrorsTool(server, cfg)

	return server
}

type sessionReportArgs struct {
	Root    string `json:"root,omitempty" jsonschema:"Directory containing run-* directories (default from config)"`
	Results string `json:"results,omitempty" jsonschema:"Directory containing result artifacts (default from config)"`
	Problem string `json:"problem,omitempty" jsonschema:"Only return sessions whose problem id contains this value"`
	Save    bool   `json:"save,omitempty" jsonschema:"Also write the report file under the root"`
}

type sessionReportOutput struct {
	Stats    report.Stats            `json:"stats"`
	Sessions []*report.SessionRecord `json:"sessions"`
}

func registerSessionReportTool(server *mcp.Server, cfg *config.Config) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "session_report",
		Description: "Reconstruct the session report from run logs and attach matching result artifacts",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args sessionReportArgs) (*mcp.CallToolResult, any, error) {
		root := firstNonEmpty(args.Root, cfg.Runs.Root)

		scanner, err := cfg.Scanner()
		if err != nil {
			return nil, nil, fmt.Errorf("invalid markers: %w", err)
		}

		records, err := runs.Aggregate(ctx, root, firstNonEmpty(args.Results, cfg.Artifacts.Dir), runs.Options{
			Layout:  cfg.Runs.Layout,
			Scanner: scanner,
			Workers: cfg.Runs.Workers,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to aggregate runs: %w", err)
		}

		reportPath := ""
		if args.Save {
			runsCfg := *cfg
			runsCfg.Runs.Root = root
			reportPath = runsCfg.ReportPath()
			if err := report.Save(reportPath, records); err != nil {
				return nil, nil, fmt.Errorf("failed to save report: %w", err)
			}
		}

		filtered := report.Filter(records, args.Problem)
		return jsonResult(sessionReportOutput{
			Stats:    report.CalculateStats(reportPath, filtered),
			Sessions: filtered,
		})
	})
}

type taskMetricsArgs struct {
	Results string `json:"results,omitempty" jsonschema:"Directory containing result artifacts (default from config)"`
	Agent   string `json:"agent,omitempty" jsonschema:"Agent whose artifacts are summarized (default from config)"`
}

func registerTaskMetricsTool(server *mcp.Server, cfg *config.Config) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "task_metrics",
		Description: "Summarize result artifacts of one agent per task category (detection, localization, root cause analysis, mitigation)",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args taskMetricsArgs) (*mcp.CallToolResult, any, error) {
		summary := metrics.AggregateDir(
			firstNonEmpty(args.Results, cfg.Artifacts.Dir),
			firstNonEmpty(args.Agent, cfg.Metrics.Agent),
		)
		return jsonResult(summary)
	})
}

type formatErrorsArgs struct {
	Results string   `json:"results,omitempty" jsonschema:"Directory containing result artifacts (default from config)"`
	Agent   string   `json:"agent,omitempty" jsonschema:"Agent whose artifacts are analyzed (default from config)"`
	Since   *float64 `json:"since,omitempty" jsonschema:"Only analyze artifacts started after this unix timestamp"`
}

func registerFormatErrorsTool(server *mcp.Server, cfg *config.Config) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "format_errors",
		Description: "Count response parsing errors the harness reported back to an agent, relative to its steps",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args formatErrorsArgs) (*mcp.CallToolResult, any, error) {
		opts := metrics.FormatErrorOptions{
			Agent:        firstNonEmpty(args.Agent, cfg.FormatErrors.Agent),
			Marker:       cfg.FormatErrors.Marker,
			MinStartTime: cfg.FormatErrors.MinStartTime,
		}
		if args.Since != nil {
			opts.MinStartTime = ptr.To(*args.Since)
		}
		return jsonResult(metrics.AnalyzeFormatErrors(firstNonEmpty(args.Results, cfg.Artifacts.Dir), opts))
	})
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}
