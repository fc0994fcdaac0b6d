package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/elee1766/grubguide/src/agent"
	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/app"
	"github.com/elee1766/grubguide/src/config"
)

// ToolsCmd represents all tool-related commands
type ToolsCmd struct {
	List ToolsListCmd `cmd:"list" help:"List available tools"`
	Exec ToolsRunCmd  `cmd:"" name:"run" help:"Execute a tool directly, through the policy"`
}

// ToolInfo represents information about a tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters,omitempty"`
}

// ToolsListCmd lists available tools
type ToolsListCmd struct {
	Format string `short:"f" enum:"table,json" default:"table" help:"Output format"`
}

func (c *ToolsListCmd) Run(ctx *kong.Context, cli *CLI) error {
	appInstance, err := newToolApp(cli)
	if err != nil {
		return err
	}
	defer appInstance.Close()

	infos := toolInfos(appInstance.Toolbox)
	switch c.Format {
	case "json":
		return printToolsJSON(ctx.Stdout, infos)
	default:
		return printToolsTable(ctx.Stdout, infos)
	}
}

// ToolsRunCmd executes one tool call
type ToolsRunCmd struct {
	Name  string `arg:"" help:"Tool name"`
	Input string `arg:"" optional:"" default:"{}" help:"Arguments as a JSON object"`
}

func (c *ToolsRunCmd) Run(ctx *kong.Context, cli *CLI) error {
	if !json.Valid([]byte(c.Input)) {
		return usagef("invalid JSON input: %s", c.Input)
	}

	appInstance, err := newToolApp(cli)
	if err != nil {
		return err
	}
	defer appInstance.Close()

	if !appInstance.Toolbox.HasTool(c.Name) {
		return usagef("unknown tool %q, try: %v", c.Name, appInstance.Toolbox.Names())
	}

	result, err := appInstance.Toolbox.ExecuteTool(context.Background(), &aisdk.ToolCall{
		ID:   "cli_" + uuid.New().String()[:8],
		Type: "function",
		Function: aisdk.FunctionCall{
			Name:      c.Name,
			Arguments: json.RawMessage(c.Input),
		},
	})
	if err != nil {
		return fmt.Errorf("tool %s failed: %w", c.Name, err)
	}

	if result.IsError {
		return fmt.Errorf("tool %s returned an error: %s", c.Name, result.Content)
	}
	_, err = fmt.Fprintln(ctx.Stdout, string(result.Content))
	return err
}

// newToolApp builds the app without a network engine, tools never need one
func newToolApp(cli *CLI) (*app.App, error) {
	cfg, err := loadConfig(cli)
	if err != nil {
		return nil, err
	}
	cfg.Engine.Provider = config.ProviderLocal
	logger := createCLILogger(cfg.Logging.Level, "text")
	return app.New(context.Background(), app.Options{Config: cfg, Logger: logger, Fs: appFs(cli), Version: version})
}

func toolInfos(toolbox *agent.DefaultToolbox) []ToolInfo {
	var infos []ToolInfo
	for _, tool := range toolbox.Tools() {
		infos = append(infos, ToolInfo{
			Name:        tool.GetName(),
			Description: tool.GetDescription(),
			Parameters:  tool.GetParameters(),
		})
	}
	return infos
}

func printToolsTable(w io.Writer, infos []ToolInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, info := range infos {
		summary, _, _ := strings.Cut(info.Description, "\n")
		fmt.Fprintf(tw, "%s\t%s\n", info.Name, summary)
	}
	return tw.Flush()
}

func printToolsJSON(w io.Writer, infos []ToolInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(infos)
}
