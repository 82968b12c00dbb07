// Package scheduler is the Proactive Scheduler (spec.md §4.9): cron jobs
// for the morning/noon/evening digests and the daily backup, plus
// interval loops for reminder-check and smart-alerts. Grounded on
// Tangerg-lynx's core/trigger.CronTrigger for the cron wiring
// (github.com/robfig/cron/v3) and on tarsy's pkg/cleanup.Service for the
// ticker-driven interval-job idiom (run-once-then-loop, context-cancelled
// shutdown, one slog line per job outcome).
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rafiq-ai/rafiq/pkg/backup"
	"github.com/rafiq-ai/rafiq/pkg/config"
	"github.com/rafiq-ai/rafiq/pkg/proactive"
)

// Notifier pushes a job's output to the client (spec.md §4.9: "push to
// client"). The only implementation is LogNotifier, which cmd/rafiq
// wraps as its live notifier; there is no push-to-client layer.
type Notifier interface {
	Notify(ctx context.Context, kind, message string) error
}

// LogNotifier is a Notifier that only logs, used when no live client
// channel is wired yet.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(_ context.Context, kind, message string) error {
	slog.Info("proactive notification", "kind", kind, "message", message)
	return nil
}

// Scheduler runs every job named in spec.md §4.9.
type Scheduler struct {
	cfg       config.Config
	proactive *proactive.Service
	backup    *backup.Service
	notifier  Notifier

	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Scheduler. notifier may be nil, in which case LogNotifier
// is used.
func New(cfg config.Config, proactiveSvc *proactive.Service, backupSvc *backup.Service, notifier Notifier) *Scheduler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Scheduler{
		cfg:       cfg,
		proactive: proactiveSvc,
		backup:    backupSvc,
		notifier:  notifier,
		cron:      cron.New(),
	}
}

// cronSpecForLocalHour builds a UTC 5-field cron spec ("M H * * *") for a
// local-clock hour, per spec.md §4.9's "local_hour - tz_offset_hours mod
// 24" conversion rule.
func (sch *Scheduler) cronSpecForLocalHour(localHour int) string {
	return fmt.Sprintf("0 %d * * *", sch.cfg.LocalHourToUTC(localHour))
}

// Start registers every cron job and launches the interval-job
// goroutines. Safe to call once.
func (sch *Scheduler) Start(ctx context.Context) error {
	ctx, sch.cancel = context.WithCancel(ctx)

	jobs := []struct {
		name string
		spec string
		fn   func(context.Context) error
	}{
		{"morning_summary", sch.cronSpecForLocalHour(sch.cfg.Scheduler.MorningSummaryHour), sch.morningSummary},
		{"noon_checkin", sch.cronSpecForLocalHour(sch.cfg.Scheduler.NoonCheckinHour), sch.noonCheckin},
		{"evening_summary", sch.cronSpecForLocalHour(sch.cfg.Scheduler.EveningSummaryHour), sch.eveningSummary},
		{"daily_backup", sch.cronSpecForLocalHour(sch.cfg.Scheduler.BackupHour), sch.dailyBackup},
	}
	for _, j := range jobs {
		if _, err := sch.cron.AddFunc(j.spec, sch.runGuarded(ctx, j.name, j.fn)); err != nil {
			return fmt.Errorf("scheduler: register %s: %w", j.name, err)
		}
	}
	sch.cron.Start()

	sch.wg.Add(2)
	go sch.intervalLoop(ctx, "reminder_check", sch.cfg.Scheduler.ReminderCheckInterval, sch.reminderCheck)
	go sch.intervalLoop(ctx, "smart_alerts", sch.cfg.Scheduler.SmartAlertsInterval, sch.smartAlerts)

	slog.Info("scheduler started",
		"morning_hour_utc", sch.cfg.LocalHourToUTC(sch.cfg.Scheduler.MorningSummaryHour),
		"noon_hour_utc", sch.cfg.LocalHourToUTC(sch.cfg.Scheduler.NoonCheckinHour),
		"evening_hour_utc", sch.cfg.LocalHourToUTC(sch.cfg.Scheduler.EveningSummaryHour),
		"backup_hour_utc", sch.cfg.LocalHourToUTC(sch.cfg.Scheduler.BackupHour),
		"reminder_check_interval", sch.cfg.Scheduler.ReminderCheckInterval,
		"smart_alerts_interval", sch.cfg.Scheduler.SmartAlertsInterval)
	return nil
}

// Stop cancels every job and waits for the interval-loop goroutines to
// exit.
func (sch *Scheduler) Stop() {
	if sch.cancel != nil {
		sch.cancel()
	}
	stopCtx := sch.cron.Stop()
	<-stopCtx.Done()
	sch.wg.Wait()
	slog.Info("scheduler stopped")
}

// runGuarded wraps a job body with the scheduler's per-job wall-clock
// budget (spec.md §5: "on timeout, the job logs and skips, never retries
// synchronously") for use as a cron.FuncJob.
func (sch *Scheduler) runGuarded(parent context.Context, name string, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(parent, sch.cfg.Scheduler.JobTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			slog.Error("scheduled job failed", "job", name, "error", err)
		}
	}
}

// intervalLoop runs fn immediately and then every d until ctx is
// cancelled, mirroring tarsy's cleanup.Service.run idiom.
func (sch *Scheduler) intervalLoop(ctx context.Context, name string, d time.Duration, fn func(context.Context) error) {
	defer sch.wg.Done()

	run := sch.runGuarded(ctx, name, fn)
	run()

	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
