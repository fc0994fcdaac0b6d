package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"

	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/catalog"
	"github.com/elee1766/grubguide/src/config"
	"github.com/elee1766/grubguide/src/grubagent"
	"github.com/elee1766/grubguide/src/orclient"
	"github.com/elee1766/grubguide/src/theme"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("configuration validation failed: %w", config.ValidationError{Message: "bad"}), ExitConfig},
		{"no api key", fmt.Errorf("wrapped: %w", orclient.ErrNoAPIKey), ExitAuth},
		{"unauthorized", &orclient.APIError{StatusCode: 401, Message: "no"}, ExitAuth},
		{"server error", &orclient.APIError{StatusCode: 502, Message: "bad gateway"}, ExitNetwork},
		{"timeout", &orclient.TimeoutError{Operation: "chat", Duration: time.Second}, ExitTimeout},
		{"deadline", context.DeadlineExceeded, ExitTimeout},
		{"interrupted", context.Canceled, ExitInterrupted},
		{"usage", usagef("unknown tool %q", "x"), ExitUsage},
		{"other", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelWarn,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info", "json").Info("listening", "addr", ":8080")
	if !strings.Contains(buf.String(), `"addr":":8080"`) {
		t.Errorf("Expected JSON log line, got %s", buf.String())
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("sk-or-1234567890"); got != "sk-o********7890" {
		t.Errorf("Unexpected mask: %s", got)
	}
	if got := maskAPIKey("short"); got != "*****" {
		t.Errorf("Unexpected mask: %s", got)
	}
}

func TestOverrideConfigFromCLI(t *testing.T) {
	cfg := config.DefaultConfig()
	overrideConfigFromCLI(cfg, &CLI{APIKey: "flag-key", Engine: "LOCAL", LogLevel: "Debug"})

	if cfg.Engine.APIKey != "flag-key" {
		t.Errorf("Expected flag key, got %s", cfg.Engine.APIKey)
	}
	if cfg.Engine.Provider != config.ProviderLocal || cfg.Engine.Model != "grubguide/local" {
		t.Errorf("Expected local engine, got %+v", cfg.Engine)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug, got %s", cfg.Logging.Level)
	}

	cfg.Engine.APIKey = "from-config"
	overrideConfigFromCLI(cfg, &CLI{APIKey: "flag-key"})
	if cfg.Engine.APIKey != "from-config" {
		t.Errorf("Expected config key to win, got %s", cfg.Engine.APIKey)
	}
}

func TestCLIParse(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("grubguide"))
	if err != nil {
		t.Fatalf("kong.New failed: %v", err)
	}

	kctx, err := parser.Parse([]string{"--engine", "local", "chat", "show", "me", "restaurants"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !strings.HasPrefix(kctx.Command(), "chat") {
		t.Errorf("Unexpected command %q", kctx.Command())
	}
	if strings.Join(cli.Chat.Message, " ") != "show me restaurants" {
		t.Errorf("Unexpected message %v", cli.Chat.Message)
	}

	if _, err := parser.Parse([]string{"tools", "run", "get_reviews", `{"restaurantName":"Kamat"}`}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cli.Tools.Exec.Name != "get_reviews" {
		t.Errorf("Unexpected tool %s", cli.Tools.Exec.Name)
	}
}

// scriptedConverser echoes the line and the history length it saw
type scriptedConverser struct{}

func (scriptedConverser) Converse(ctx context.Context, history []aisdk.Turn, message string) ([]aisdk.Turn, string) {
	reply := fmt.Sprintf("%s (%d)", message, len(history))
	return aisdk.AppendTurns(history,
		aisdk.Turn{Role: aisdk.TurnUser, Text: message},
		aisdk.Turn{Role: aisdk.TurnAssistant, Text: reply},
	), reply
}

func TestRunREPL(t *testing.T) {
	in := strings.NewReader("first\n\nsecond\n/reset\nthird\n/quit\nignored\n")
	var out bytes.Buffer

	if err := runREPL(context.Background(), in, &out, scriptedConverser{}, theme.NewStyles()); err != nil {
		t.Fatalf("runREPL failed: %v", err)
	}

	transcript := out.String()
	for _, want := range []string{grubagent.GreetingMessage, "first (0)", "second (2)", "conversation cleared", "third (0)"} {
		if !strings.Contains(transcript, want) {
			t.Errorf("Expected %q in transcript:\n%s", want, transcript)
		}
	}
	if strings.Contains(transcript, "ignored") {
		t.Error("Expected input after /quit to be ignored")
	}
}

func TestRunREPLEndOfInput(t *testing.T) {
	var out bytes.Buffer
	if err := runREPL(context.Background(), strings.NewReader("hello"), &out, scriptedConverser{}, theme.NewStyles()); err != nil {
		t.Fatalf("runREPL failed: %v", err)
	}
	if !strings.Contains(out.String(), "hello (0)") {
		t.Errorf("Expected reply, got %s", out.String())
	}
}

func TestPrintReplyJSON(t *testing.T) {
	var out bytes.Buffer
	if err := printReply(&out, "hi there", true); err != nil {
		t.Fatalf("printReply failed: %v", err)
	}
	if !strings.Contains(out.String(), `"botResponse": "hi there"`) {
		t.Errorf("Unexpected output %s", out.String())
	}
}

func TestPrintCatalog(t *testing.T) {
	store := catalog.NewMemoryStoreWith(catalog.SeedData{
		Restaurants: []catalog.Restaurant{
			{ID: "1", Name: "Kamat Hotel", Cuisine: "Vegetarian"},
			{ID: "2", Name: "Empty Place", Cuisine: "Cafe"},
		},
		Reviews: []catalog.Review{
			{ID: "r1", RestaurantID: "1", Text: "good", Rating: 5},
			{ID: "r2", RestaurantID: "1", Text: "fine", Rating: 4},
		},
	})

	var out bytes.Buffer
	if err := printCatalog(context.Background(), &out, store); err != nil {
		t.Fatalf("printCatalog failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 rows, got %q", out.String())
	}
	if !strings.Contains(lines[1], "Kamat Hotel") || !strings.Contains(lines[1], "4.5") {
		t.Errorf("Unexpected row %q", lines[1])
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[2]), "-") {
		t.Errorf("Expected no average for empty restaurant, got %q", lines[2])
	}
}
