package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	AuthSecret      string
	QPayBaseURL     string
	QPayUsername    string
	QPayPassword    string
	QPayInvoiceCode string
	CallbackURL     string
	PollInterval    time.Duration
	WorkerPoolSize  int
	MaxOrdersBatch  int
	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultAuthSecret      = "change-me-in-production"
	defaultQPayBaseURL     = "https://merchant.qpay.mn"
	defaultPollInterval    = 3 * time.Second
	defaultWorkerPoolSize  = 4
	defaultMaxOrdersBatch  = 32
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from an optional .env file, environment
// variables, and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		AuthSecret:      getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		QPayBaseURL:     getString(lookup, "QPAY_BASE_URL", defaultQPayBaseURL),
		QPayUsername:    getString(lookup, "QPAY_USERNAME", ""),
		QPayPassword:    getString(lookup, "QPAY_PASSWORD", ""),
		QPayInvoiceCode: getString(lookup, "QPAY_INVOICE_CODE", ""),
		CallbackURL:     getString(lookup, "QPAY_CALLBACK_URL", ""),
		PollInterval:    getDuration(lookup, "POLL_INTERVAL", defaultPollInterval),
		WorkerPoolSize:  getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		MaxOrdersBatch:  getInt(lookup, "POLL_BATCH_SIZE", defaultMaxOrdersBatch),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("qpaygate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.PollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.QPayBaseURL, "q", cfg.QPayBaseURL, "QPay API base URL")
	fs.StringVar(&cfg.QPayUsername, "qpay-username", cfg.QPayUsername, "QPay API username")
	fs.StringVar(&cfg.QPayPassword, "qpay-password", cfg.QPayPassword, "QPay API password")
	fs.StringVar(&cfg.QPayInvoiceCode, "invoice-code", cfg.QPayInvoiceCode, "QPay merchant invoice code")
	fs.StringVar(&cfg.CallbackURL, "callback-url", cfg.CallbackURL, "Webhook URL sent with created invoices")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing merchant tokens")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconcile workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between reconcile sweeps")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MaxOrdersBatch, "poll-batch", cfg.MaxOrdersBatch, "Maximum orders per reconcile sweep")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxOrdersBatch <= 0 {
		cfg.MaxOrdersBatch = defaultMaxOrdersBatch
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.QPayUsername == "" || cfg.QPayPassword == "" {
		return nil, fmt.Errorf("QPay credentials must be provided")
	}

	if cfg.QPayInvoiceCode == "" {
		return nil, fmt.Errorf("QPay invoice code must be provided")
	}

	if cfg.CallbackURL == "" {
		return nil, fmt.Errorf("callback URL must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
