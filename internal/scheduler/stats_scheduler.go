package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/safedine/safedine-backend/internal/app/service"
	"github.com/safedine/safedine-backend/pkg/logger"
)

// StatsScheduler recomputes cached establishment review stats overnight
type StatsScheduler struct {
	cron       *cron.Cron
	estService service.EstablishmentService
}

func NewStatsScheduler(estService service.EstablishmentService) *StatsScheduler {
	return &StatsScheduler{
		cron:       cron.New(),
		estService: estService,
	}
}

// Start registers the nightly recompute job and starts the cron loop
func (s *StatsScheduler) Start() error {
	// "0 3 * * *" = every day at 03:00
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("Starting scheduled review stats recompute", nil)

		updated, err := s.estService.RecomputeReviewStats()
		if err != nil {
			logger.Error("Failed to recompute review stats from scheduler", err)
			return
		}

		logger.Info("Successfully recomputed review stats from scheduler", map[string]interface{}{
			"establishments_updated": updated,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for stats recompute", err)
		return err
	}

	s.cron.Start()
	logger.Info("Review stats scheduler started successfully (daily at 3:00 AM)", nil)

	return nil
}

// Stop stops the scheduler
func (s *StatsScheduler) Stop() {
	logger.Info("Stopping review stats scheduler...", nil)
	s.cron.Stop()
	logger.Info("Review stats scheduler stopped", nil)
}
