package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/command"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/config"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/logger"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/models"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/monitor"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/polymarket"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/pricing"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/scan"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/storage"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/telegram"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/term"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	scanMode   = flag.Bool("scan", false, "Run a one-shot low-risk reward market scan and exit")
	wallet     = flag.String("wallet", "", "Show open positions for a wallet address (read-only) and exit")
)

func main() {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	polyClient := polymarket.NewClient(
		cfg.Polymarket.GammaAPIURL,
		cfg.Polymarket.CLOBAPIURL,
		cfg.Polymarket.DataAPIURL,
		cfg.Polymarket.Timeout,
		polymarket.ClientConfig{
			MaxRetries:     cfg.Polymarket.MaxRetries,
			RetryDelayBase: cfg.Polymarket.RetryDelayBase,
			PageLimit:      cfg.Polymarket.PageLimit,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	if *wallet != "" {
		if err := showWalletPositions(ctx, polyClient, *wallet); err != nil {
			logger.Fatal("Failed to show wallet positions: %v", err)
		}
		return
	}

	if *scanMode {
		opts := scan.Options{
			MaxRisk:   cfg.Scan.MaxRisk,
			TopN:      cfg.Scan.TopN,
			MinVolume: cfg.Scan.MinVolume,
		}
		if err := scan.Run(ctx, polyClient, opts); err != nil {
			logger.Fatal("Scan failed: %v", err)
		}
		return
	}

	store, err := storage.New(cfg.Storage.DBPath, cfg.Storage.MaxAlertRows)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	positions, err := store.LoadPositions()
	if err != nil {
		logger.Fatal("Failed to load positions: %v", err)
	}
	book := models.NewBook(positions, store)
	logger.Info("Loaded %d tracked position(s)", book.Len())

	pricer := pricing.New(polyClient)

	var telegramClient *telegram.Client
	var handler *command.Handler
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(
			cfg.Telegram.BotToken,
			cfg.Telegram.ChatID,
			cfg.Polymarket.MaxRetries,
			cfg.Polymarket.RetryDelayBase,
		)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		handler = command.NewHandler(telegramClient, book, pricer, telegramClient.ChatID())
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	monitorConfig := monitor.Config{
		AlertThresholdCents: cfg.Monitor.AlertThresholdCents,
		UpDownCheckEvery:    cfg.Monitor.UpDownCheckEvery,
		UpDownLeadHours:     cfg.Monitor.UpDownLeadHours,
	}
	var notifier monitor.Notifier
	var commander monitor.Commander
	if telegramClient != nil {
		notifier = telegramClient
		commander = handler
	}
	mon := monitor.New(book, pricer, polyClient, notifier, commander, store, monitorConfig)

	logger.Info("Starting position monitor (interval: %v, alert threshold: %.1f¢)",
		cfg.Monitor.PollInterval, cfg.Monitor.AlertThresholdCents)

	ticker := time.NewTicker(cfg.Monitor.PollInterval)
	defer ticker.Stop()

	logger.Debug("Running initial monitoring cycle")
	mon.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Service stopped")
			return
		case <-ticker.C:
			logger.Debug("Starting scheduled monitoring cycle")
			mon.RunCycle(ctx)
		}
	}
}

// showWalletPositions prints a wallet's open positions from the public Data
// API. Read-only; needs only the proxy wallet address.
func showWalletPositions(ctx context.Context, client *polymarket.Client, address string) error {
	fmt.Printf("Fetching open positions for %s...\n", address)
	positions, err := client.FetchUserPositions(ctx, address)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		fmt.Println("No open positions found.")
		return nil
	}
	fmt.Printf("Open positions: %d\n\n", len(positions))
	for i := range positions {
		p := &positions[i]
		title := p.Title
		if term.Enabled() {
			title = term.Color(title, term.Bold)
		}
		fmt.Printf("%d. %s\n", i+1, title)
		fmt.Printf("   Outcome: %s  Size: %.2f  Avg price: %.3f  Current: %.3f\n",
			p.Outcome, p.Size.Float(), p.AvgPrice.Float(), p.CurPrice.Float())
		fmt.Printf("   PnL: $%.2f (%.1f%%)\n", p.CashPnl.Float(), p.PercentPnl.Float())
		if u := p.URL(); u != "" {
			fmt.Printf("   %s\n", term.Color(u, term.Cyan))
		}
		fmt.Println()
	}
	return nil
}
