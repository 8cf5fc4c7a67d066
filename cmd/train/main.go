package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"TrendCast/internal/di"
	"TrendCast/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbol := flag.String("symbol", "", "ticker symbol to train (required)")
	epochs := flag.Int("epochs", 0, "epoch count override (0 = config default)")
	flag.Parse()

	if *symbol == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger, err := di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	ch, err := di.ProvideClickHouseClient(cfg)
	if err != nil {
		log.Fatalf("clickhouse: %v", err)
	}
	defer ch.Close()

	store, err := di.ProvideBarStore(ch, logger)
	if err != nil {
		log.Fatalf("bar store: %v", err)
	}
	fe := di.ProvideFeatureEngine(cfg)
	ckpts := di.ProvideCheckpointStore(cfg, logger)
	metrics := di.ProvideMetrics()
	uc := di.ProvideTrainUseCase(store, fe, ckpts, metrics, logger, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := uc.Train(ctx, strings.ToUpper(*symbol), *epochs)
	if err != nil {
		log.Fatalf("train failed: %v", err)
	}

	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("encode report: %v", err)
	}
	os.Stdout.Write(b)
	os.Stdout.WriteString("\n")
}
