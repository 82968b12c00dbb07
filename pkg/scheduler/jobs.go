package scheduler

import (
	"context"
	"fmt"
)

func (sch *Scheduler) morningSummary(ctx context.Context) error {
	text, err := sch.proactive.MorningSummary(ctx)
	if err != nil {
		return err
	}
	return sch.notifier.Notify(ctx, "morning_summary", text)
}

func (sch *Scheduler) noonCheckin(ctx context.Context) error {
	text, err := sch.proactive.NoonCheckin(ctx)
	if err != nil {
		return err
	}
	if text == "" {
		return nil // spec.md §4.9: skip if no overdue reminders
	}
	return sch.notifier.Notify(ctx, "noon_checkin", text)
}

func (sch *Scheduler) eveningSummary(ctx context.Context) error {
	text, err := sch.proactive.EveningSummary(ctx)
	if err != nil {
		return err
	}
	return sch.notifier.Notify(ctx, "evening_summary", text)
}

// reminderCheck notifies every due reminder, then advances it (recurring)
// or marks it notified (one-off); persistent reminders are re-armed for
// the next nag cycle instead of being closed out (spec.md §4.9).
func (sch *Scheduler) reminderCheck(ctx context.Context) error {
	due, err := sch.proactive.DueReminders(ctx)
	if err != nil {
		return fmt.Errorf("reminder check: %w", err)
	}

	for _, r := range due {
		if err := sch.notifier.Notify(ctx, "reminder_due", r.Title); err != nil {
			return fmt.Errorf("reminder check: notify %s: %w", r.ID, err)
		}

		if r.Persistent {
			if err := sch.proactive.ReschedulePersistent(ctx, r); err != nil {
				return fmt.Errorf("reminder check: reschedule persistent %s: %w", r.ID, err)
			}
			continue
		}
		if err := sch.proactive.AdvanceReminder(ctx, r); err != nil {
			return fmt.Errorf("reminder check: advance %s: %w", r.ID, err)
		}
	}
	return nil
}

// smartAlerts surfaces stalled projects and old debts, skipping the
// notification entirely when both are empty (spec.md §4.9).
func (sch *Scheduler) smartAlerts(ctx context.Context) error {
	stalled, err := sch.proactive.StalledProjects(ctx, sch.cfg.Scheduler.StalledProjectDays)
	if err != nil {
		return fmt.Errorf("smart alerts: stalled projects: %w", err)
	}
	debts, err := sch.proactive.OldDebts(ctx, sch.cfg.Scheduler.OldDebtDays)
	if err != nil {
		return fmt.Errorf("smart alerts: old debts: %w", err)
	}
	if len(stalled) == 0 && len(debts) == 0 {
		return nil
	}

	text := formatSmartAlerts(stalled, debts)
	return sch.notifier.Notify(ctx, "smart_alerts", text)
}

func (sch *Scheduler) dailyBackup(ctx context.Context) error {
	path, err := sch.backup.Run(ctx)
	if err != nil {
		return fmt.Errorf("daily backup: %w", err)
	}
	return sch.notifier.Notify(ctx, "daily_backup", "backup written to "+path)
}
