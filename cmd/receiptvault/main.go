package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"go.etcd.io/bbolt"

	"github.com/husseinallaw/receiptvault-app/internal/exchange"
	"github.com/husseinallaw/receiptvault-app/internal/insights"
	"github.com/husseinallaw/receiptvault-app/internal/ocr"
	"github.com/husseinallaw/receiptvault-app/internal/priceindex"
	"github.com/husseinallaw/receiptvault-app/internal/receipt"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("receiptvault")
	var (
		port             = fs.IntLong("port", 8080, "HTTP server port")
		dbPath           = fs.StringLong("db", "receiptvault.db", "Database file path")
		storagePath      = fs.StringLong("storage", "./receipts", "Receipt image storage directory")
		providerType     = fs.StringLong("ocr", "vision", "OCR provider: 'vision' or 'gemini'")
		visionKey        = fs.StringLong("vision-key", "", "Google Cloud Vision API key (falls back to application default credentials)")
		geminiKey        = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel      = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		rateInterval     = fs.DurationLong("rate-sync-interval", time.Hour, "Exchange rate sync interval")
		insightsInterval = fs.DurationLong("insights-interval", 7*24*time.Hour, "Spending insights generation interval")
		authUser         = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass         = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion      = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPTVAULT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Open the shared database; each store owns a bucket in it
	slog.Info("Opening database...", "path", *dbPath)
	boltDB, err := bbolt.Open(*dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer boltDB.Close()

	db, err := receipt.NewBoltDB(boltDB)
	if err != nil {
		slog.Error("Failed to initialize receipt store", "error", err)
		os.Exit(1)
	}

	priceIndex, err := priceindex.NewBoltIndex(boltDB)
	if err != nil {
		slog.Error("Failed to initialize price index", "error", err)
		os.Exit(1)
	}

	rateDB, err := exchange.NewBoltDB(boltDB)
	if err != nil {
		slog.Error("Failed to initialize exchange rate store", "error", err)
		os.Exit(1)
	}

	insightDB, err := insights.NewBoltDB(boltDB)
	if err != nil {
		slog.Error("Failed to initialize insight store", "error", err)
		os.Exit(1)
	}

	// Initialize OCR provider based on type
	var provider ocr.Provider
	switch *providerType {
	case "vision":
		slog.Info("Initializing Cloud Vision provider...")
		provider, err = ocr.NewVision(*visionKey)
		if err != nil {
			slog.Error("Failed to initialize Cloud Vision", "error", err)
			os.Exit(1)
		}
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini provider...", "model", *geminiModel)
		provider, err = ocr.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid OCR provider type", "type", *providerType, "valid", "vision or gemini")
		os.Exit(1)
	}
	defer provider.Close()

	slog.Info("Initializing storage...", "path", *storagePath)
	store, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	receiptService := receipt.NewService(db, provider, store)
	rateService := exchange.NewService(rateDB, exchange.DefaultSource())
	insightService := insights.NewService(insightDB, receipt.NewSpendingSource(db))

	// Background sync loops
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rateService.Run(ctx, *rateInterval)
	go insightService.Run(ctx, *insightsInterval)

	basicAuth := receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := receipt.NewServer(receiptService, priceIndex, rateService, insightService, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
