package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/app"
	"github.com/elee1766/grubguide/src/chat"
	"github.com/elee1766/grubguide/src/grubagent"
	"github.com/elee1766/grubguide/src/theme"
)

// ChatCmd sends one message, or runs an interactive session when no
// message is given
type ChatCmd struct {
	Message []string `arg:"" optional:"" help:"Message to send"`
	JSON    bool     `help:"Print the reply as a {botResponse} object"`
}

// converser is the part of chat.Service the REPL needs
type converser interface {
	Converse(ctx context.Context, history []aisdk.Turn, message string) ([]aisdk.Turn, string)
}

func (c *ChatCmd) Run(ctx *kong.Context, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	// keep the terminal for the conversation
	if cli.LogLevel == "" {
		cfg.Logging.Level = "warn"
	}
	logger := createCLILogger(cfg.Logging.Level, "text")

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appInstance, err := app.New(runCtx, app.Options{Config: cfg, Logger: logger, Fs: appFs(cli), Version: version})
	if err != nil {
		return err
	}
	defer appInstance.Close()

	if len(c.Message) > 0 {
		_, reply := appInstance.Chat.Converse(runCtx, nil, strings.Join(c.Message, " "))
		return printReply(ctx.Stdout, reply, c.JSON)
	}

	return runREPL(runCtx, os.Stdin, ctx.Stdout, appInstance.Chat, theme.NewStyles())
}

func printReply(w io.Writer, reply string, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(chat.Response{BotResponse: reply})
	}
	_, err := fmt.Fprintln(w, reply)
	return err
}

// runREPL keeps the history across lines. "/reset" clears it and "/quit"
// or end of input leaves.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, conv converser, styles theme.Styles) error {
	fmt.Fprintf(out, "%s %s\n", styles.BotLabel.Render("bot>"), styles.Reply.Render(grubagent.GreetingMessage))
	fmt.Fprintln(out, styles.Muted.Render("/reset clears the conversation, /quit leaves"))

	var history []aisdk.Turn
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, styles.UserLabel.Render("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			history = nil
			fmt.Fprintln(out, styles.Muted.Render("conversation cleared"))
			continue
		}

		var reply string
		history, reply = conv.Converse(ctx, history, line)
		fmt.Fprintf(out, "%s %s\n", styles.BotLabel.Render("bot>"), styles.Reply.Render(reply))

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
