// Package scheduler runs the periodic jobs of the service. Ingredient
// prices are effective-dated, so a recipe's cost can change at a date
// boundary without any write happening; the nightly job refreshes every
// recipe cost so stored values track the calendar.
package scheduler

import (
	"time"

	"recipe-backend/internal/costing"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron       *cron.Cron
	recalcSpec string
	logger     *zap.Logger
}

func New(recalcSpec string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:       cron.New(),
		recalcSpec: recalcSpec,
		logger:     logger,
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("recalc_spec", s.recalcSpec))

	if _, err := s.cron.AddFunc(s.recalcSpec, s.recalculateAllCosts); err != nil {
		s.logger.Error("failed to schedule cost recalculation", zap.Error(err))
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) recalculateAllCosts() {
	start := time.Now()
	s.logger.Info("nightly cost recalculation started")

	updated, err := costing.RecalculateAll()
	if err != nil {
		s.logger.Error("nightly cost recalculation failed", zap.Error(err))
		return
	}

	s.logger.Info("nightly cost recalculation finished",
		zap.Int("recipes_updated", updated),
		zap.Duration("elapsed", time.Since(start)))
}
