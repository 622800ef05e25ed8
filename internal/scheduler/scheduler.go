package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/inventaire/internal/config"
	"github.com/mamadbah2/inventaire/internal/domain/models"
	"github.com/mamadbah2/inventaire/internal/repository/sheets"
	"github.com/mamadbah2/inventaire/internal/service/inventory"
)

// Scheduler runs the periodic inventory snapshot: a CSV dump to disk plus an
// optional Google Sheets mirror of records created since the previous run.
type Scheduler struct {
	cron         *cron.Cron
	inventorySvc inventory.Service
	sheetsRepo   sheets.Repository
	cfg          config.SnapshotConfig
	logger       *zap.Logger

	lastSync time.Time
}

// NewScheduler creates a new scheduler instance. sheetsRepo may be nil when
// the mirror is not configured.
func NewScheduler(cfg config.SnapshotConfig, inventorySvc inventory.Service, sheetsRepo sheets.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:         cron.New(),
		inventorySvc: inventorySvc,
		sheetsRepo:   sheetsRepo,
		cfg:          cfg,
		logger:       logger,
		lastSync:     time.Now(),
	}
}

// Start registers the snapshot job. A missing schedule disables the
// scheduler entirely.
func (s *Scheduler) Start() {
	if s.cfg.CronSchedule == "" {
		s.logger.Info("snapshot scheduler disabled, no schedule configured")
		return
	}

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.writeSnapshot); err != nil {
		s.logger.Error("failed to schedule inventory snapshot", zap.Error(err))
		return
	}

	s.logger.Info("snapshot scheduler started", zap.String("schedule", s.cfg.CronSchedule))
	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping snapshot scheduler")
	s.cron.Stop()
}

func (s *Scheduler) writeSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	data, err := s.inventorySvc.ExportCSV(ctx)
	if err != nil {
		s.logger.Error("failed to export inventory snapshot", zap.Error(err))
		return
	}

	path := filepath.Join(s.cfg.Dir, fmt.Sprintf("inventaire_%s.csv", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("failed to write inventory snapshot", zap.String("path", path), zap.Error(err))
		return
	}
	s.logger.Info("inventory snapshot written", zap.String("path", path))

	if s.sheetsRepo == nil {
		return
	}

	records, err := s.inventorySvc.List(ctx)
	if err != nil {
		s.logger.Error("failed to load records for sheets mirror", zap.Error(err))
		return
	}

	fresh := make([]models.InventoryRecord, 0, len(records))
	for _, record := range records {
		if record.CreatedAt.After(s.lastSync) {
			fresh = append(fresh, record)
		}
	}

	if err := s.sheetsRepo.AppendRecords(ctx, fresh); err != nil {
		s.logger.Error("failed to mirror records to sheets", zap.Error(err))
		return
	}

	s.lastSync = time.Now()
	if len(fresh) > 0 {
		s.logger.Info("records mirrored to sheets", zap.Int("count", len(fresh)))
	}
}
