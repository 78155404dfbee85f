// Package scheduler drives the reporting cadence: a cron job fires once
// per report period and nudges the collector through a trigger channel.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler periodically signals that a report interval has elapsed.
type Scheduler struct {
	cron    *cron.Cron
	trigger chan struct{}
	logger  *logrus.Logger
}

// New creates a scheduler firing every period. The trigger channel is
// buffered with depth one and fires are non-blocking, so a collector that
// falls behind misses triggers instead of queueing them.
func New(period time.Duration, logger *logrus.Logger) (*Scheduler, error) {
	if period < time.Second {
		return nil, fmt.Errorf("report period %s below cron granularity of 1s", period)
	}

	s := &Scheduler{
		cron:    cron.New(),
		trigger: make(chan struct{}, 1),
		logger:  logger,
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", period), s.fire); err != nil {
		return nil, fmt.Errorf("failed to schedule report job: %w", err)
	}

	return s, nil
}

func (s *Scheduler) fire() {
	select {
	case s.trigger <- struct{}{}:
	default:
		s.logger.Warn("Report trigger still pending; skipping tick")
	}
}

// Trigger returns the channel that receives one value per elapsed report
// period.
func (s *Scheduler) Trigger() <-chan struct{} {
	return s.trigger
}

// Start begins firing triggers.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
