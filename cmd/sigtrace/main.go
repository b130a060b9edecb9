package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sophialabs/sigtrace/internal/app"
)

func main() {
	cfg := app.DefaultConfig()
	flag.StringVar(&cfg.RulesDir, "rules", cfg.RulesDir, "directory containing signature rule files")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.Version, "engine-version", cfg.Version, "engine version used for signature version windows")
	flag.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "maximum signatures evaluated in parallel")
	flag.DurationVar(&cfg.SignatureTimeout, "signature-timeout", cfg.SignatureTimeout, "per-signature evaluation timeout")
	flag.IntVar(&cfg.RunHistorySize, "run-history", cfg.RunHistorySize, "number of run summaries to keep")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	reportPath := flag.String("report", "", "analyze a sandbox report file (.json or .xml) and exit")
	flag.Parse()

	a, err := app.New(cfg)
	if err != nil {
		_, err := fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		if err != nil {
			return
		}
		os.Exit(1)
	}

	if *reportPath != "" {
		if err := a.RunReport(context.Background(), *reportPath); err != nil {
			_, err := fmt.Fprintf(os.Stderr, "error: %v\n", err)
			if err != nil {
				return
			}
			os.Exit(1)
		}
		return
	}

	if err := a.Run(context.Background()); err != nil {
		_, err := fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if err != nil {
			return
		}
		os.Exit(1)
	}
}
