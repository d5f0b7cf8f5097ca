package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper drops idle grid workspaces.
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// Scheduler runs the periodic housekeeping jobs.
type Scheduler struct {
	cron     *cron.Cron
	grids    Sweeper
	schedule string
	now      func() time.Time
}

// New creates a scheduler that sweeps grids on schedule, a standard five-field
// cron expression or a descriptor such as "@every 5m".
func New(schedule string, grids Sweeper) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		grids:    grids,
		schedule: schedule,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweepGrids); err != nil {
		return fmt.Errorf("schedule grid sweep %q: %w", s.schedule, err)
	}
	s.cron.Start()
	log.Info().Str("schedule", s.schedule).Msg("scheduler: started")
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("scheduler: stopped")
}

func (s *Scheduler) sweepGrids() {
	if n := s.grids.Sweep(s.now()); n > 0 {
		log.Info().Int("evicted", n).Int("open", s.grids.Len()).Msg("scheduler: idle grids swept")
	}
}
