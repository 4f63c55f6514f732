package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bloemp/stockreport/internal/config"
	"github.com/bloemp/stockreport/internal/repository/mongodb"
	"github.com/bloemp/stockreport/internal/service/export"
	"github.com/bloemp/stockreport/internal/service/report"
)

// Scheduler runs the nightly QA digest: for every stock item with results
// recorded since the previous run, rebuild its report, archive a snapshot
// and export the rows to the QA spreadsheet.
type Scheduler struct {
	cron      *cron.Cron
	reportSvc report.Reporter
	exportSvc *export.Service
	repo      mongodb.Repository
	cfg       config.ReportingConfig
	logger    *zap.Logger

	mu      sync.Mutex
	lastRun time.Time
}

// NewScheduler creates a new scheduler instance. exportSvc may be nil when
// the sheets export is not configured; snapshots are still archived.
func NewScheduler(cfg config.ReportingConfig, reportSvc report.Reporter, exportSvc *export.Service, repo mongodb.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.Local
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		reportSvc: reportSvc,
		exportSvc: exportSvc,
		repo:      repo,
		cfg:       cfg,
		logger:    logger,
		lastRun:   time.Now().Add(-24 * time.Hour),
	}
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDigest); err != nil {
		s.logger.Error("failed to schedule QA digest", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.mu.Lock()
	since := s.lastRun
	s.lastRun = time.Now()
	s.mu.Unlock()

	s.logger.Info("running QA digest", zap.Time("since", since))

	ids, err := s.repo.ListItemsTestedSince(ctx, since)
	if err != nil {
		s.logger.Error("failed listing recently tested items", zap.Error(err))
		return
	}

	var processed, failed int
	for _, id := range ids {
		if err := s.digestItem(ctx, id); err != nil {
			s.logger.Error("digest failed for item", zap.Int64("stock_item", id), zap.Error(err))
			failed++
			continue
		}
		processed++
	}

	s.logger.Info("QA digest complete", zap.Int("processed", processed), zap.Int("failed", failed))
}

func (s *Scheduler) digestItem(ctx context.Context, stockItemID int64) error {
	rep, err := s.reportSvc.BuildTestReport(ctx, stockItemID)
	if err != nil {
		return err
	}

	snapshot := rep.Snapshot()
	if err := s.repo.SaveReportSnapshot(ctx, snapshot); err != nil {
		return err
	}

	if s.exportSvc != nil {
		if err := s.exportSvc.ExportReport(ctx, rep); err != nil {
			return err
		}
		if err := s.exportSvc.ExportDigest(ctx, snapshot); err != nil {
			return err
		}
	}

	return nil
}
