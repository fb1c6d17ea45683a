package scheduler

import (
	"context"
	"fmt"
	"time"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

// PeriodScheduler fires once per configured morning and evening wall-clock
// time in the bulletin timezone.
type PeriodScheduler struct {
	location *time.Location
	morning  string
	evening  string
	stop     chan struct{}
}

var _ ports.Scheduler = (*PeriodScheduler)(nil)

// NewPeriodScheduler builds a scheduler from "HH:MM" boundary strings.
func NewPeriodScheduler(location *time.Location, morning, evening string) *PeriodScheduler {
	if location == nil {
		location = time.UTC
	}
	return &PeriodScheduler{location: location, morning: morning, evening: evening}
}

// Start launches the timer loop; each tick reports which period window it
// stands for and the local calendar date.
func (s *PeriodScheduler) Start(ctx context.Context, job func(ports.ScheduledRun)) error {
	if job == nil {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	morning, err := parseClock(s.morning)
	if err != nil {
		return fmt.Errorf("morning time: %w", err)
	}
	evening, err := parseClock(s.evening)
	if err != nil {
		return fmt.Errorf("evening time: %w", err)
	}

	s.stop = make(chan struct{})
	go func() {
		for {
			fireAt, period := s.nextBoundary(time.Now().In(s.location), morning, evening)
			timer := time.NewTimer(time.Until(fireAt))

			select {
			case <-timer.C:
				job(ports.ScheduledRun{
					Period: period,
					Date:   fireAt.Format(time.DateOnly),
				})
			case <-ctx.Done():
				timer.Stop()
				return
			case <-s.stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the timer goroutine.
func (s *PeriodScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}

type clock struct {
	hour   int
	minute int
}

func parseClock(value string) (clock, error) {
	var c clock
	if _, err := fmt.Sscanf(value, "%d:%d", &c.hour, &c.minute); err != nil {
		return clock{}, fmt.Errorf("parse %q: %w", value, err)
	}
	if c.hour < 0 || c.hour > 23 || c.minute < 0 || c.minute > 59 {
		return clock{}, fmt.Errorf("out of range: %q", value)
	}
	return c, nil
}

// nextBoundary picks the earliest upcoming morning/evening boundary after now.
func (s *PeriodScheduler) nextBoundary(now time.Time, morning, evening clock) (time.Time, domain.Period) {
	morningAt := at(now, morning, s.location)
	eveningAt := at(now, evening, s.location)

	switch {
	case now.Before(morningAt):
		return morningAt, domain.PeriodMorning
	case now.Before(eveningAt):
		return eveningAt, domain.PeriodEvening
	default:
		return at(now.AddDate(0, 0, 1), morning, s.location), domain.PeriodMorning
	}
}

func at(day time.Time, c clock, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, 0, 0, loc)
}
