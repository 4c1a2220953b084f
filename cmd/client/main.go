// SPDX-License-Identifier: Apache-2.0

// Command client is a thin terminal front end for a running gateway.
//
// Usage:
//
//	client [-addr host:port] <command> [args]
//
// Commands:
//
//	health              gateway status and version
//	scan <text>         interactive scan of raw text (reads stdin if no args)
//	estimate <model> <text>
//	usage [-since RFC3339]
//	logs [-action ACTION] [-model NAME] [-limit N]
//	tokens              list vault redaction tokens
//	resolve <tokenId>   recover the original value behind a token
//	simulate [dir]      leak simulation over a directory on the gateway host
//
// The gateway address can also be set with PROMPT_SENTRY_ADDR.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/adapter"
	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const defaultAddr = "localhost:8790"

func main() {
	log := logger.NewLogger("prompt-sentry-client")

	addr := flag.String("addr", envOr("PROMPT_SENTRY_ADDR", defaultAddr), "gateway address")
	showVersion := flag.Bool("version", false, "print build info and exit")
	flag.Parse()

	if *showVersion {
		printBuildInfo()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: client [-addr host:port] <health|scan|estimate|usage|logs|tokens|resolve|simulate> [args]")
		os.Exit(2)
	}

	gw, err := adapter.NewHTTPGatewayClient(*addr, 30*time.Second, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating gateway client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err = run(ctx, gw, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, gw adapter.GatewayClient, command string, args []string) error {
	switch command {
	case "health":
		status, err := gw.Health(ctx)
		if err != nil {
			return err
		}
		return printJSON(status)

	case "scan":
		text, err := textFromArgsOrStdin(args)
		if err != nil {
			return err
		}
		verdict, err := gw.ScanText(ctx, models.BrowserScanRequest{Text: text, Source: "cli"})
		if err != nil {
			return err
		}
		return printJSON(verdict)

	case "estimate":
		if len(args) < 2 {
			return fmt.Errorf("usage: estimate <model> <text>")
		}
		estimate, err := gw.Estimate(ctx, models.ChatCompletionRequest{
			Model:    args[0],
			Messages: []models.ChatMessage{{Role: "user", Content: strings.Join(args[1:], " ")}},
		})
		if err != nil {
			return err
		}
		return printJSON(estimate)

	case "usage":
		fs := flag.NewFlagSet("usage", flag.ContinueOnError)
		sinceRaw := fs.String("since", "", "only records at or after this RFC 3339 timestamp")
		if err := fs.Parse(args); err != nil {
			return err
		}
		var since time.Time
		if *sinceRaw != "" {
			parsed, err := time.Parse(time.RFC3339, *sinceRaw)
			if err != nil {
				return fmt.Errorf("invalid -since: %w", err)
			}
			since = parsed
		}
		summary, err := gw.Usage(ctx, since)
		if err != nil {
			return err
		}
		return printJSON(summary)

	case "logs":
		fs := flag.NewFlagSet("logs", flag.ContinueOnError)
		action := fs.String("action", "", "filter by verdict (ALLOW, REDACT, BLOCK)")
		model := fs.String("model", "", "filter by model name")
		limit := fs.Int("limit", 0, "page size")
		if err := fs.Parse(args); err != nil {
			return err
		}
		entries, err := gw.Logs(ctx, adapter.LogQuery{Action: *action, Model: *model, Limit: *limit})
		if err != nil {
			return err
		}
		return printJSON(entries)

	case "tokens":
		tokens, err := gw.VaultTokens(ctx)
		if err != nil {
			return err
		}
		return printJSON(tokens)

	case "resolve":
		if len(args) != 1 {
			return fmt.Errorf("usage: resolve <tokenId>")
		}
		value, err := gw.ResolveToken(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil

	case "simulate":
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		report, err := gw.Simulate(ctx, target)
		if err != nil {
			return err
		}
		return printJSON(report)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// textFromArgsOrStdin joins the remaining arguments, or reads stdin
// whole so the command composes with pipes.
func textFromArgsOrStdin(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", fmt.Errorf("no text given")
	}
	return text, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
