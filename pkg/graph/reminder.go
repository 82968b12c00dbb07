package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReminderInput is the create_reminder / update_reminder payload.
type ReminderInput struct {
	Title       string
	DueDate     time.Time
	Type        string // one_time|recurring|persistent|event_based|financial
	Recurrence  string // daily|weekly|monthly|yearly (only for recurring)
	Priority    string
	Description string
	Persistent  bool
	Prayer      string
}

var validReminderTypes = map[string]bool{
	"one_time": true, "recurring": true, "persistent": true, "event_based": true, "financial": true,
}

// CreateReminder creates a Reminder node. due_date is never empty (spec.md
// §3 invariant); callers must resolve event_based prayer anchoring before
// calling this.
func (s *Service) CreateReminder(ctx context.Context, in ReminderInput) (string, error) {
	if in.DueDate.IsZero() {
		return "", fmt.Errorf("graph: create reminder: due_date is required")
	}
	if !validReminderTypes[in.Type] {
		in.Type = "one_time"
	}

	id := uuid.NewString()
	_, err := s.store.Query(ctx, `
		CREATE (r:Reminder {
			id: $id, title: $title, due_date: $due_date, reminder_type: $type,
			recurrence: $recurrence, status: 'pending', priority: $priority,
			description: $description, persistent: $persistent, prayer: $prayer,
			created_at: datetime(), updated_at: datetime()
		})`,
		map[string]any{
			"id":          id,
			"title":       in.Title,
			"due_date":    in.DueDate.Format(time.RFC3339),
			"type":        in.Type,
			"recurrence":  nilIfEmpty(in.Recurrence),
			"priority":    nilIfEmpty(in.Priority),
			"description": nilIfEmpty(in.Description),
			"persistent":  in.Persistent,
			"prayer":      nilIfEmpty(in.Prayer),
		})
	if err != nil {
		return "", fmt.Errorf("graph: create reminder: %w", err)
	}
	return id, nil
}

// UpdateReminder patches the given fields on a reminder by id. Empty
// strings/zero DueDate mean "leave unchanged".
func (s *Service) UpdateReminder(ctx context.Context, id string, in ReminderInput) error {
	var dueDate any
	if !in.DueDate.IsZero() {
		dueDate = in.DueDate.Format(time.RFC3339)
	}
	_, err := s.store.Query(ctx, `
		MATCH (r:Reminder {id: $id})
		SET r.title = coalesce($title, r.title),
		    r.due_date = coalesce($due_date, r.due_date),
		    r.priority = coalesce($priority, r.priority),
		    r.description = coalesce($description, r.description),
		    r.updated_at = datetime()`,
		map[string]any{
			"id":          id,
			"title":       nilIfEmpty(in.Title),
			"due_date":    dueDate,
			"priority":    nilIfEmpty(in.Priority),
			"description": nilIfEmpty(in.Description),
		})
	if err != nil {
		return fmt.Errorf("graph: update reminder: %w", err)
	}
	return nil
}

// SetReminderStatus implements the done|snooze|cancel reminder action.
func (s *Service) SetReminderStatus(ctx context.Context, id, status string, newDueDate time.Time) error {
	params := map[string]any{"id": id, "status": status}
	cypher := `MATCH (r:Reminder {id: $id}) SET r.status = $status, r.updated_at = datetime()`
	if !newDueDate.IsZero() {
		cypher = `MATCH (r:Reminder {id: $id}) SET r.status = $status, r.due_date = $due_date, r.updated_at = datetime()`
		params["due_date"] = newDueDate.Format(time.RFC3339)
	}
	if _, err := s.store.Query(ctx, cypher, params); err != nil {
		return fmt.Errorf("graph: set reminder status: %w", err)
	}
	return nil
}

// DeleteReminder removes a single reminder by id.
func (s *Service) DeleteReminder(ctx context.Context, id string) error {
	if _, err := s.store.Query(ctx, `MATCH (r:Reminder {id: $id}) DETACH DELETE r`, map[string]any{"id": id}); err != nil {
		return fmt.Errorf("graph: delete reminder: %w", err)
	}
	return nil
}

// DeleteAllReminders clears every reminder, used by POST /reminders/delete-all.
func (s *Service) DeleteAllReminders(ctx context.Context) error {
	if _, err := s.store.Query(ctx, `MATCH (r:Reminder) DETACH DELETE r`, nil); err != nil {
		return fmt.Errorf("graph: delete all reminders: %w", err)
	}
	return nil
}

// recurrenceSteps maps a recurrence label to the calendar arithmetic used
// by AdvanceRecurringReminder, a Go stand-in for relativedelta.
var recurrenceSteps = map[string]func(time.Time) time.Time{
	"daily":   func(t time.Time) time.Time { return t.AddDate(0, 0, 1) },
	"weekly":  func(t time.Time) time.Time { return t.AddDate(0, 0, 7) },
	"monthly": func(t time.Time) time.Time { return t.AddDate(0, 1, 0) },
	"yearly":  func(t time.Time) time.Time { return t.AddDate(1, 0, 0) },
}

// AdvanceRecurringReminder moves due_date forward by the recurrence unit
// until it is strictly in the future, per spec.md §4.4.
func (s *Service) AdvanceRecurringReminder(ctx context.Context, id, recurrence string, currentDue time.Time) (time.Time, error) {
	step, ok := recurrenceSteps[recurrence]
	if !ok {
		return time.Time{}, fmt.Errorf("graph: advance recurring reminder: unknown recurrence %q", recurrence)
	}

	next := currentDue
	now := time.Now().UTC()
	for !next.After(now) {
		next = step(next)
	}

	if _, err := s.store.Query(ctx, `
		MATCH (r:Reminder {id: $id}) SET r.due_date = $due_date, r.status = 'pending', r.updated_at = datetime()`,
		map[string]any{"id": id, "due_date": next.Format(time.RFC3339)}); err != nil {
		return time.Time{}, fmt.Errorf("graph: advance recurring reminder: %w", err)
	}
	return next, nil
}

// Reminder is one row of query_reminders / search_reminders.
type Reminder struct {
	ID          string
	Title       string
	DueDate     time.Time
	Type        string
	Recurrence  string
	Status      string
	Priority    string
	Description string
	Persistent  bool
}

// QueryReminders filters by status ("" = any) and an optional free-text
// query matched against title, per spec.md §6's search_reminders shape.
func (s *Service) QueryReminders(ctx context.Context, status, query string) ([]Reminder, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (r:Reminder)
		WHERE ($status = '' OR r.status = $status)
		  AND ($query = '' OR toLower(r.title) CONTAINS toLower($query))
		RETURN r ORDER BY r.due_date LIMIT 200`,
		map[string]any{"status": status, "query": query})
	if err != nil {
		return nil, fmt.Errorf("graph: query reminders: %w", err)
	}
	out := make([]Reminder, 0, len(rows))
	for _, r := range rows {
		props, _ := r["r"].(map[string]any)
		out = append(out, reminderFromProps(props))
	}
	return out, nil
}

func reminderFromProps(props map[string]any) Reminder {
	id, _ := props["id"].(string)
	title, _ := props["title"].(string)
	dueRaw, _ := props["due_date"].(string)
	due, _ := time.Parse(time.RFC3339, dueRaw)
	typ, _ := props["reminder_type"].(string)
	recurrence, _ := props["recurrence"].(string)
	status, _ := props["status"].(string)
	priority, _ := props["priority"].(string)
	description, _ := props["description"].(string)
	persistent, _ := props["persistent"].(bool)
	return Reminder{
		ID: id, Title: title, DueDate: due, Type: typ, Recurrence: recurrence,
		Status: status, Priority: priority, Description: description, Persistent: persistent,
	}
}

// DueReminders returns pending reminders whose due_date has arrived, for
// the scheduler's reminder-check job.
func (s *Service) DueReminders(ctx context.Context) ([]Reminder, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (r:Reminder) WHERE r.status = 'pending' AND r.due_date <= $now
		RETURN r ORDER BY r.due_date`,
		map[string]any{"now": time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return nil, fmt.Errorf("graph: due reminders: %w", err)
	}
	out := make([]Reminder, 0, len(rows))
	for _, r := range rows {
		props, _ := r["r"].(map[string]any)
		out = append(out, reminderFromProps(props))
	}
	return out, nil
}

// MarkNotified records that a reminder has been surfaced to the user. It
// is idempotent under duplicate delivery (spec.md §5: "mark_notified is a
// set operation").
func (s *Service) MarkNotified(ctx context.Context, id string) error {
	if _, err := s.store.Query(ctx, `MATCH (r:Reminder {id: $id}) SET r.status = 'done', r.updated_at = datetime()`,
		map[string]any{"id": id}); err != nil {
		return fmt.Errorf("graph: mark notified: %w", err)
	}
	return nil
}

// MergeDuplicateReminders groups reminders whose titles match after
// lowercasing and trimming, and keeps the one with the earliest due_date
// in each group, used by
// POST /reminders/merge-duplicates.
func (s *Service) MergeDuplicateReminders(ctx context.Context) (int, error) {
	all, err := s.QueryReminders(ctx, "", "")
	if err != nil {
		return 0, err
	}

	seen := map[string]bool{}
	merged := 0
	for _, r := range all {
		key := normalize(r.Title)
		if seen[key] {
			if err := s.DeleteReminder(ctx, r.ID); err != nil {
				return merged, err
			}
			merged++
			continue
		}
		seen[key] = true
	}
	return merged, nil
}
