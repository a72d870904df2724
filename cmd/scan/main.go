// cmd/scan/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/internal/alert"
	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/forecast"
	"github.com/andresuchdata/replenish/internal/reorder"
	"github.com/andresuchdata/replenish/internal/repository/postgres"
	"github.com/andresuchdata/replenish/internal/scan"
	"github.com/andresuchdata/replenish/internal/storage"
	"github.com/andresuchdata/replenish/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "scan",
		Usage: "Run replenishment scans over the product catalog",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Scan products and print prioritized alerts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "products",
						Usage: "Comma-separated product ids (default: whole catalog)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent prediction workers (default: from config)",
					},
				},
				Action: runScan,
			},
			{
				Name:  "export",
				Usage: "Scan products and upload the report CSV to the archive bucket",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "products",
						Usage: "Comma-separated product ids (default: whole catalog)",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("scan failed")
	}
}

func buildScanner(c *cli.Context, cfg *config.Config) (*scan.Scanner, error) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := postgres.NewOrderRepository(db)

	var advisor forecast.Advisor
	if cfg.Advisor.Endpoint != "" {
		advisor = forecast.NewOpenAIAdvisor(cfg.Advisor.Endpoint, cfg.Advisor.APIKey, cfg.Advisor.Model, cfg.Advisor.Timeout())
	}

	calc := reorder.NewCalculator(repo, advisor, cfg.Advisor.Timeout())
	generator := alert.NewGenerator(cfg.Scan.AlertTTL())

	var notifier alert.Notifier = alert.NoopNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = alert.NewWebhookNotifier(cfg.Notify.WebhookURL, time.Duration(cfg.Notify.TimeoutSeconds)*time.Second)
	}

	workers := cfg.Scan.WorkerCount
	if c.Int("workers") > 0 {
		workers = c.Int("workers")
	}

	return scan.NewScanner(repo, calc, generator, alert.NewMemoryStore(), notifier, scan.Config{
		WorkerCount: workers,
		TaskTimeout: cfg.Scan.TaskTimeout(),
	}), nil
}

func runScan(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	scanner, err := buildScanner(c, cfg)
	if err != nil {
		return err
	}

	result, err := doScan(c, scanner)
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func runExport(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	if !cfg.Archive.Enabled {
		return fmt.Errorf("archive is not enabled; set ARCHIVE_ENABLED and the bucket credentials")
	}

	archive, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Archive.Endpoint,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		UseSSL:    cfg.Archive.UseSSL,
	})
	if err != nil {
		return err
	}

	scanner, err := buildScanner(c, cfg)
	if err != nil {
		return err
	}

	result, err := doScan(c, scanner)
	if err != nil {
		return err
	}

	report, err := scan.ReportCSV(result)
	if err != nil {
		return err
	}

	key := scan.ReportKey(time.Now())
	if err := archive.UploadObject(c.Context, key, report, "text/csv"); err != nil {
		return err
	}

	logger.Log.Info().Str("key", key).Int("recommendations", len(result.Recommendations)).Msg("scan report archived")
	printResult(result)
	return nil
}

func doScan(c *cli.Context, scanner *scan.Scanner) (*scan.Result, error) {
	ids, err := parseProductIDs(c.String("products"))
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return scanner.ScanAll(c.Context)
	}
	return scanner.Scan(c.Context, ids)
}

func parseProductIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q", p)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func printResult(result *scan.Result) {
	fmt.Printf("Scanned %d products in %s (%d skipped)\n", result.Scanned, result.Duration.Round(time.Millisecond), result.Skipped)
	fmt.Printf("Alerts: %d", result.Summary.TotalAlerts)
	for severity, count := range result.Summary.CountsBySeverity {
		fmt.Printf("  %s=%d", severity, count)
	}
	fmt.Println()

	for _, a := range result.Alerts {
		fmt.Printf("  [%3d] %-9s %-20s %s\n", a.Priority, a.Severity, a.ProductName, a.Message)
	}

	if result.Summary.AtRiskValue > 0 {
		fmt.Printf("Estimated value at risk: %.2f (%d products, %d without unit cost)\n",
			result.Summary.AtRiskValue, result.Summary.AtRiskProducts, result.Summary.UnvaluedProducts)
	}
}
