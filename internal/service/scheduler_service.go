package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService owns the cron runner behind the engine's periodic work.
// The reminder scan and the daily digest are registered as separate entries,
// so one cadence never delays the other.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// ScheduleInterval runs job repeatedly, interval apart. Sub-second intervals
// are rounded up to one second, the finest cadence cron supports.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
}

// ScheduleDaily runs job once per day at the given HH:MM local time.
func (s *SchedulerService) ScheduleDaily(clock string, job func()) (cron.EntryID, error) {
	hour, minute, err := parseClock(clock)
	if err != nil {
		return 0, err
	}
	// field order: second minute hour dom month dow
	return s.cron.AddFunc(fmt.Sprintf("0 %d %d * * *", minute, hour), job)
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running job to return.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// parseClock splits an "HH:MM" string into its hour and minute.
func parseClock(clock string) (hour, minute int, err error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return hour, minute, nil
}
