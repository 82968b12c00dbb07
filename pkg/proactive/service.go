// Package proactive holds the business logic behind every job the
// Scheduler runs (spec.md §4.9) — morning/noon/evening digests, reminder
// advancement, and stalled-project/old-debt alerts. It is the single
// place this logic lives: the REST surface's /proactive/* handlers and
// the Scheduler's cron/interval jobs both call into the same Service, so
// a manual "run morning summary now" request and the 07:00 cron job
// produce identical output (mirrors tarsy's pattern of a thin handler
// delegating to a pkg/services singleton shared with background workers).
package proactive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rafiq-ai/rafiq/pkg/graph"
)

// Service wires the job bodies to the Graph Service they query.
type Service struct {
	graph *graph.Service
}

// New builds a Service.
func New(graphSvc *graph.Service) *Service {
	return &Service{graph: graphSvc}
}

// MorningSummary lists, in Arabic, the pending reminders that are already
// due (due_date at or before now) and fall on today's UTC date, per
// spec.md §4.9. Tasks are not listed, and reminders due later today are
// not included.
func (s *Service) MorningSummary(ctx context.Context) (string, error) {
	due, err := s.graph.DueReminders(ctx)
	if err != nil {
		return "", fmt.Errorf("proactive: morning summary: %w", err)
	}
	today := todayReminders(due)
	if len(today) == 0 {
		return "صباح الخير، لا توجد مهام أو تذكيرات لهذا اليوم.", nil
	}

	var b strings.Builder
	b.WriteString("صباح الخير، تذكيرات اليوم:\n")
	for _, r := range today {
		fmt.Fprintf(&b, "- %s (%s)\n", r.Title, r.DueDate.Format("15:04"))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// NoonCheckin reports overdue reminders only, returning "" when there are
// none (spec.md §4.9: "skip if empty").
func (s *Service) NoonCheckin(ctx context.Context) (string, error) {
	due, err := s.graph.DueReminders(ctx)
	if err != nil {
		return "", fmt.Errorf("proactive: noon checkin: %w", err)
	}
	overdue := make([]graph.Reminder, 0, len(due))
	now := time.Now().UTC()
	for _, r := range due {
		if r.DueDate.Before(now) {
			overdue = append(overdue, r)
		}
	}
	if len(overdue) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("تذكيرات متأخرة:\n")
	for _, r := range overdue {
		fmt.Fprintf(&b, "- %s\n", r.Title)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// EveningSummary reports what was completed today and what's due tomorrow.
func (s *Service) EveningSummary(ctx context.Context) (string, error) {
	tasks, err := s.graph.QueryTasks(ctx, "", "done")
	if err != nil {
		return "", fmt.Errorf("proactive: evening summary: %w", err)
	}
	reminders, err := s.graph.QueryReminders(ctx, "pending", "")
	if err != nil {
		return "", fmt.Errorf("proactive: evening summary: %w", err)
	}
	tomorrow := dueWithin(reminders, time.Now().UTC().AddDate(0, 0, 1))

	var b strings.Builder
	fmt.Fprintf(&b, "تم إنجاز %d مهمة اليوم.\n", len(tasks))
	if len(tomorrow) > 0 {
		b.WriteString("تذكيرات الغد:\n")
		for _, r := range tomorrow {
			fmt.Fprintf(&b, "- %s\n", r.Title)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// DueReminders exposes the Graph Service's due-reminder query for the
// Scheduler's reminder-check job and GET /proactive/due-reminders.
func (s *Service) DueReminders(ctx context.Context) ([]graph.Reminder, error) {
	return s.graph.DueReminders(ctx)
}

// AdvanceReminder marks a notified reminder's next state: advances
// recurring reminders to their next due date, otherwise marks it
// notified. Idempotent under duplicate delivery (spec.md §5).
func (s *Service) AdvanceReminder(ctx context.Context, r graph.Reminder) error {
	if r.Type == "recurring" && r.Recurrence != "" {
		if _, err := s.graph.AdvanceRecurringReminder(ctx, r.ID, r.Recurrence, r.DueDate); err != nil {
			return fmt.Errorf("proactive: advance recurring reminder %s: %w", r.ID, err)
		}
		return nil
	}
	if err := s.graph.MarkNotified(ctx, r.ID); err != nil {
		return fmt.Errorf("proactive: mark notified %s: %w", r.ID, err)
	}
	return nil
}

// ReschedulePersistent re-arms a persistent reminder for the next nag
// cycle instead of closing it out, per spec.md §4.9.
func (s *Service) ReschedulePersistent(ctx context.Context, r graph.Reminder) error {
	next := time.Now().UTC().Add(24 * time.Hour)
	return s.graph.UpdateReminder(ctx, r.ID, graph.ReminderInput{
		Title: r.Title, DueDate: next, Type: r.Type, Recurrence: r.Recurrence,
		Priority: r.Priority, Description: r.Description, Persistent: true,
	})
}

// StalledProjects exposes the Graph Service's stalled-project query.
func (s *Service) StalledProjects(ctx context.Context, staleDays int) ([]graph.StalledProject, error) {
	return s.graph.StalledProjects(ctx, staleDays)
}

// OldDebts exposes the Graph Service's old-debt query.
func (s *Service) OldDebts(ctx context.Context, olderThanDays int) ([]graph.Debt, error) {
	return s.graph.OldDebts(ctx, olderThanDays)
}

func todayReminders(due []graph.Reminder) []graph.Reminder {
	now := time.Now().UTC()
	out := make([]graph.Reminder, 0, len(due))
	for _, r := range due {
		if sameDay(r.DueDate, now) {
			out = append(out, r)
		}
	}
	return out
}

func dueWithin(reminders []graph.Reminder, day time.Time) []graph.Reminder {
	out := make([]graph.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if sameDay(r.DueDate, day) {
			out = append(out, r)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
