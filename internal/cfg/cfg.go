package cfg

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

// Config adds service-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	APIToken              string
	DefaultSchemaVersion  string
	StrictNormalization   bool
	AdapterTimeoutSeconds int
	DatabaseURL           string
	CaseWebhookURL        string
	HoldWebhookURL        string
	CommsWebhookURL       string
	ReportWebhookURL      string
	AssignWebhookURL      string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token for API auth (empty = auth disabled)")
	fs.StringVar(&c.DefaultSchemaVersion, "default-schema-version", "v2", "schema version assumed when a payload declares none")
	fs.BoolVar(&c.StrictNormalization, "strict-normalization", false, "reject payload fields with no alias or canonical match")
	fs.IntVar(&c.AdapterTimeoutSeconds, "adapter-timeout-seconds", 10, "per-action adapter call timeout (1..300)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.CaseWebhookURL, "case-webhook-url", "", "webhook endpoint for CREATE_CASE actions (empty = stub adapter)")
	fs.StringVar(&c.HoldWebhookURL, "hold-webhook-url", "", "webhook endpoint for PLACE_SOFT_HOLD actions (empty = stub adapter)")
	fs.StringVar(&c.CommsWebhookURL, "comms-webhook-url", "", "webhook endpoint for SEND_COMMUNICATION actions (empty = stub adapter)")
	fs.StringVar(&c.ReportWebhookURL, "report-webhook-url", "", "webhook endpoint for FILE_REPORT actions (empty = stub adapter)")
	fs.StringVar(&c.AssignWebhookURL, "assign-webhook-url", "", "webhook endpoint for ASSIGN_TEAM actions (empty = stub adapter)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// The default contract version must name a schema shipped in the binary
	if c.DefaultSchemaVersion == "" {
		errs = append(errs, errors.New("DEFAULT_SCHEMA_VERSION is required"))
	}

	if c.AdapterTimeoutSeconds <= 0 || c.AdapterTimeoutSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid ADAPTER_TIMEOUT_SECONDS %d (must be 1..300)", c.AdapterTimeoutSeconds))
	}

	for name, url := range map[string]string{
		"CASE_WEBHOOK_URL":   c.CaseWebhookURL,
		"HOLD_WEBHOOK_URL":   c.HoldWebhookURL,
		"COMMS_WEBHOOK_URL":  c.CommsWebhookURL,
		"REPORT_WEBHOOK_URL": c.ReportWebhookURL,
		"ASSIGN_WEBHOOK_URL": c.AssignWebhookURL,
	} {
		if url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			errs = append(errs, fmt.Errorf("invalid %s %q (must be an http(s) URL)", name, url))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
