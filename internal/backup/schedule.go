package backup

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler writes an export into a directory on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	dir  string
	src  func() State
}

// NewScheduler registers the export job. spec is a standard cron expression or a
// descriptor like "@daily".
func NewScheduler(spec, dir string, src func() State) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		dir:  dir,
		src:  src,
	}

	if _, err := s.cron.AddFunc(spec, s.Run); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}

	return s, nil
}

// Run writes one export now.
func (s *Scheduler) Run() {
	path, err := WriteFile(s.dir, s.src(), time.Now())
	if err != nil {
		log.Error().Err(err).Str("dir", s.dir).Msg("scheduled backup failed")

		return
	}

	log.Info().Str("path", path).Msg("scheduled backup written")
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the schedule and waits for a running export.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
