package main

import (
	"github.com/alecthomas/kong"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// CLI represents the main CLI structure
type CLI struct {
	Config   string `short:"c" type:"path" help:"Configuration file, merged over the standard locations"`
	APIKey   string `env:"OPENROUTER_API_KEY" help:"OpenRouter API key"`
	Engine   string `help:"Generation engine (openrouter, local)"`
	LogLevel string `default:"" help:"Log level (debug, info, warn, error)"`

	Serve   ServeCmd   `cmd:"" help:"Serve the chat over HTTP and WebSocket"`
	Chat    ChatCmd    `cmd:"" help:"Send a message, or chat interactively when none is given"`
	Tools   ToolsCmd   `cmd:"" help:"Inspect and run the catalog tools"`
	Catalog CatalogCmd `cmd:"" help:"Manage the restaurant catalog"`
	Version VersionCmd `cmd:"" help:"Print the version"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("grubguide"),
		kong.Description("Gadag Grub Guide, a restaurant chat assistant"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		FatalError(createCLILogger(cli.LogLevel, "text"), err)
	}
}

// VersionCmd prints the build version
type VersionCmd struct{}

func (v *VersionCmd) Run(ctx *kong.Context) error {
	_, err := ctx.Stdout.Write([]byte("grubguide " + version + "\n"))
	return err
}
