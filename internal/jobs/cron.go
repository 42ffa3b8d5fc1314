// Package jobs runs the scheduled maintenance passes: the nightly
// reconciliation snapshot and the license expiry scan.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"ArmeriaCorpAdmin/internal/armsapi"
	"ArmeriaCorpAdmin/internal/config"
	"ArmeriaCorpAdmin/internal/logger"
	"ArmeriaCorpAdmin/internal/reconcile"
)

type CronService struct {
	pool     *pgxpool.Pool
	source   armsapi.Source
	pipeline *reconcile.Pipeline
	config   map[string]interface{}
	cron     *cron.Cron
}

func NewCronService(pool *pgxpool.Pool, cfg map[string]interface{}) *CronService {
	source := armsapi.NewPGSource(pool)
	return &CronService{
		pool:     pool,
		source:   source,
		pipeline: reconcile.NewPipeline(source).WithWorkers(4),
		config:   cfg,
	}
}

func (s *CronService) Name() string { return "jobs" }

func (s *CronService) Start() error {
	loc, err := time.LoadLocation(config.DefaultTimeZone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	s.cron = cron.New(cron.WithLocation(loc))

	reconcileSpec := s.schedule("reconcile_schedule", config.DefaultReconcileSchedule)
	if _, err := s.cron.AddFunc(reconcileSpec, s.runReconcileSnapshot); err != nil {
		return fmt.Errorf("schedule reconcile snapshot: %w", err)
	}
	expirySpec := s.schedule("license_expiry_schedule", config.DefaultLicenseExpirySchedule)
	if _, err := s.cron.AddFunc(expirySpec, s.runLicenseExpiryScan); err != nil {
		return fmt.Errorf("schedule license expiry scan: %w", err)
	}

	s.cron.Start()
	logger.Audit("Cron jobs scheduled: snapshot %q, license scan %q", reconcileSpec, expirySpec)
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	return nil
}

func (s *CronService) schedule(key, fallback string) string {
	if v, ok := s.config[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// runReconcileSnapshot rebuilds the full ledger and stores one summary
// row, so balance history survives roster edits.
func (s *CronService) runReconcileSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	roster, err := s.source.ListClients(ctx)
	if err != nil {
		logger.Audit("Snapshot skipped, roster unavailable: %v", err)
		return
	}
	aggregates, err := s.pipeline.Reconcile(ctx, roster)
	if err != nil {
		logger.Audit("Snapshot skipped, reconcile failed: %v", err)
		return
	}

	totalPaid := decimal.Zero
	totalOutstanding := decimal.Zero
	for _, a := range aggregates {
		totalPaid = totalPaid.Add(a.PaidAmount)
		totalOutstanding = totalOutstanding.Add(a.OutstandingBalance)
	}

	query := `
		INSERT INTO reconciliation_snapshots (taken_at, client_count, payment_count, total_paid, total_outstanding)
		VALUES (now(), $1, $2, $3, $4)
	`
	if _, err := s.pool.Exec(ctx, query, len(roster), len(aggregates), totalPaid.String(), totalOutstanding.String()); err != nil {
		logger.Audit("Snapshot insert failed: %v", err)
		return
	}
	logger.Audit("Snapshot stored: %d clients, %d payments", len(roster), len(aggregates))
}

// runLicenseExpiryScan flags licenses inside the warning window.
func (s *CronService) runLicenseExpiryScan() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	query := `
		SELECT l.number, l.expires_at, c.first_name, c.last_name
		FROM licenses l
		JOIN clients c ON l.client_id = c.client_id
		WHERE l.expires_at <= now() + make_interval(days => $1)
		ORDER BY l.expires_at
	`
	rows, err := s.pool.Query(ctx, query, config.LicenseExpiryWarningDays)
	if err != nil {
		logger.Audit("License expiry scan failed: %v", err)
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			number, first, last string
			expires             time.Time
		)
		if err := rows.Scan(&number, &expires, &first, &last); err != nil {
			logger.Audit("License expiry scan failed: %v", err)
			return
		}
		logger.Audit("License %s of %s %s expires %s", number, first, last, expires.Format("2006-01-02"))
		count++
	}
	logger.Audit("License expiry scan done: %d licenses inside the %d-day window", count, config.LicenseExpiryWarningDays)
}
