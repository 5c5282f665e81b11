package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agenthands/council/internal/config"
	"github.com/agenthands/council/internal/council"
	"github.com/agenthands/council/internal/llm"
)

type cliConfig struct {
	configPath string
	models     string
	chairman   string
	timeout    int
	file       string
	jsonOut    bool
	prompt     string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cli, err := parseFlags()
	if err != nil {
		return err
	}

	_ = godotenv.Load()

	cfg, err := config.Load(cli.configPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, cli)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry, err := llm.BuildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	gateway := llm.NewGateway(registry, cfg.Timeout())

	pipeline := council.New(gateway, cfg.Council.Models, cfg.Council.Chairman)
	if !cli.jsonOut {
		pipeline.WithEmitter(progressEmitter(os.Stderr))
	}

	start := time.Now()
	result, err := pipeline.Run(ctx, []llm.Message{{Role: llm.RoleUser, Content: cli.prompt}})
	if err != nil {
		return err
	}

	if cli.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(os.Stderr, "\nCouncil finished in %s (%d answered, %d ranked)\n\n",
		time.Since(start).Round(time.Millisecond), len(result.Stage1), len(result.Stage2))
	for _, agg := range result.Metadata.AggregateRankings {
		fmt.Fprintf(os.Stderr, "  %-40s avg rank %.2f (%d ballots)\n", agg.Model, agg.AverageRank, agg.RankingsCount)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Println(result.Stage3.Response)
	return nil
}

func progressEmitter(w *os.File) council.Emitter {
	labels := map[string]string{
		council.EventStage1Start: "Querying council...",
		council.EventStage2Start: "Collecting peer rankings...",
		council.EventStage3Start: "Chairman is synthesizing...",
	}
	return func(ev council.Event) {
		if msg, ok := labels[ev.Type]; ok {
			fmt.Fprintln(w, msg)
		}
	}
}

func applyOverrides(cfg *config.Config, cli *cliConfig) {
	if cli.models != "" {
		var models []string
		for _, m := range strings.Split(cli.models, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
		cfg.Council.Models = models
	}
	if cli.chairman != "" {
		cfg.Council.Chairman = cli.chairman
	}
	if cli.timeout > 0 {
		cfg.Council.TimeoutSeconds = cli.timeout
	}
}

func parseFlags() (*cliConfig, error) {
	cli := &cliConfig{}
	flag.StringVar(&cli.configPath, "config", "config/config.toml", "Path to TOML configuration")
	flag.StringVar(&cli.models, "models", "", "Comma-separated council model override")
	flag.StringVar(&cli.chairman, "chairman", "", "Chairman model override")
	flag.IntVar(&cli.timeout, "timeout", 0, "Per-model timeout override in seconds")
	flag.StringVar(&cli.file, "file", "", "Read prompt from file")
	flag.BoolVar(&cli.jsonOut, "json", false, "Print the full result as JSON to stdout")
	flag.Parse()

	prompt, err := getPrompt(flag.Args(), cli.file)
	if err != nil {
		return nil, err
	}
	cli.prompt = prompt
	return cli, nil
}

func getPrompt(args []string, file string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading prompt file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.Join(lines, "\n"), nil
	}

	return "", fmt.Errorf("no prompt provided: use a positional argument, --file, or pipe to stdin")
}
