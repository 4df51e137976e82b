package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/klimeurt/pages-collector/internal/collector"
	"github.com/klimeurt/pages-collector/internal/config"
	"github.com/robfig/cron/v3"
)

const runTimeout = 30 * time.Minute

func main() {
	// Load .env if present (non-fatal if missing)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create scanner
	scanner, err := collector.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create scanner: %v", err)
	}

	if cfg.RunOnce {
		err := runScan(scanner)
		scanner.Close()
		if err != nil {
			log.Printf("Scan failed: %v", err)
			os.Exit(1)
		}
		return
	}
	defer scanner.Close()

	// Scheduled and startup runs share one job so they never overlap
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(cron.FuncJob(func() {
		if err := runScan(scanner); err != nil {
			log.Printf("Scan failed: %v", err)
		}
	}))

	// Create cron scheduler
	c := cron.New()

	// Add job
	_, err = c.AddJob(cfg.CronSchedule, job)
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}

	// Start cron scheduler
	c.Start()
	log.Printf("Cron scheduler started with schedule: %s", cfg.CronSchedule)

	// Run immediately on startup if configured
	if cfg.RunOnStartup {
		log.Println("Running initial scan on startup...")
		job.Run()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	<-c.Stop().Done()
}

func runScan(scanner *collector.Scanner) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	return scanner.ScanRepositories(ctx)
}
