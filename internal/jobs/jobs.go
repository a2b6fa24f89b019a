// Package jobs runs the periodic maintenance tasks.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"hostel-backend/config"
)

// Expirer closes gate passes whose window has ended.
type Expirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Runner owns the scheduler. A nil *Runner means every job is disabled.
type Runner struct {
	scheduler gocron.Scheduler
}

// New schedules the gate-pass sweeper every cfg.GatePassExpiryInterval.
// It returns nil when the interval is zero.
func New(cfg config.JobsConfig, passes Expirer) (*Runner, error) {
	if cfg.GatePassExpiryInterval <= 0 {
		log.Println("Gate pass expiry job disabled.")
		return nil, nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(cfg.GatePassExpiryInterval),
		gocron.NewTask(SweepGatePasses, passes),
		gocron.WithName("gatepass-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to schedule gate pass expiry: %w", err)
	}
	return &Runner{scheduler: s}, nil
}

func (r *Runner) Start() {
	if r == nil {
		return
	}
	r.scheduler.Start()
}

// Shutdown stops the scheduler and waits for running jobs.
func (r *Runner) Shutdown() error {
	if r == nil {
		return nil
	}
	return r.scheduler.Shutdown()
}

// SweepGatePasses expires overdue gate passes once.
func SweepGatePasses(passes Expirer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := passes.ExpireOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("Error expiring gate passes: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Expired %d gate pass(es).", n)
	}
}
