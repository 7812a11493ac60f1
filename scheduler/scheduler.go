// Package scheduler triggers the morning and evening digest runs at fixed
// local times.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	mu       sync.Mutex
}

func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		location: loc,
	}, nil
}

// Schedule registers fn to run daily at the given HH:MM local time.
func (s *Scheduler) Schedule(digestTime string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expr, err := convertToCron(digestTime)
	if err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(expr, fn); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Stop()
}

// NextRun reports the earliest upcoming trigger, zero when nothing is
// scheduled.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next time.Time
	for _, entry := range s.cron.Entries() {
		if next.IsZero() || entry.Next.Before(next) {
			next = entry.Next
		}
	}
	return next
}

func convertToCron(digestTime string) (string, error) {
	if len(digestTime) != 5 || digestTime[2] != ':' {
		return "", fmt.Errorf("invalid time format: %s", digestTime)
	}

	var hour, minute int
	if _, err := fmt.Sscanf(digestTime, "%d:%d", &hour, &minute); err != nil {
		return "", fmt.Errorf("invalid time format: %s", digestTime)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("time out of range: %s", digestTime)
	}

	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
