package api

import (
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/pkg/graph"
)

// remindersListHandler handles GET /reminders/?status&include_overdue.
func (s *Server) remindersListHandler(c *echo.Context) error {
	ctx := c.Request().Context()
	status := c.QueryParam("status")

	reminders, err := s.graph.QueryReminders(ctx, status, "")
	if err != nil {
		return mapServiceError(err)
	}

	includeOverdue, _ := strconv.ParseBool(c.QueryParam("include_overdue"))
	if includeOverdue {
		due, err := s.graph.DueReminders(ctx)
		if err != nil {
			return mapServiceError(err)
		}
		reminders = mergeReminders(reminders, due)
	}

	return c.JSON(http.StatusOK, reminders)
}

func mergeReminders(base, extra []graph.Reminder) []graph.Reminder {
	seen := make(map[string]bool, len(base))
	for _, r := range base {
		seen[r.ID] = true
	}
	out := base
	for _, r := range extra {
		if !seen[r.ID] {
			out = append(out, r)
			seen[r.ID] = true
		}
	}
	return out
}

// reminderActionHandler handles POST /reminders/action: done|snooze|cancel.
func (s *Server) reminderActionHandler(c *echo.Context) error {
	var req struct {
		ID         string `json:"id"`
		Action     string `json:"action"`
		NewDueDate string `json:"new_due_date"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	ctx := c.Request().Context()
	switch req.Action {
	case "done":
		if err := s.graph.SetReminderStatus(ctx, req.ID, "done", time.Time{}); err != nil {
			return mapServiceError(err)
		}
	case "cancel":
		if err := s.graph.SetReminderStatus(ctx, req.ID, "cancelled", time.Time{}); err != nil {
			return mapServiceError(err)
		}
	case "snooze":
		due, err := time.Parse(time.RFC3339, req.NewDueDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "new_due_date must be RFC3339 for snooze")
		}
		if err := s.graph.SetReminderStatus(ctx, req.ID, "pending", due); err != nil {
			return mapServiceError(err)
		}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "action must be one of done|snooze|cancel")
	}
	return c.NoContent(http.StatusNoContent)
}

// reminderUpdateHandler handles POST /reminders/update.
func (s *Server) reminderUpdateHandler(c *echo.Context) error {
	var req struct {
		ID string `json:"id"`
		graph.ReminderInput
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}
	if err := s.graph.UpdateReminder(c.Request().Context(), req.ID, req.ReminderInput); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// reminderDeleteHandler handles POST /reminders/delete.
func (s *Server) reminderDeleteHandler(c *echo.Context) error {
	var req struct {
		ID string `json:"id"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}
	if err := s.graph.DeleteReminder(c.Request().Context(), req.ID); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// reminderDeleteAllHandler handles POST /reminders/delete-all. spec.md §6
// requires this destructive bulk action to require an explicit
// confirmation flag in the body, mirroring the delete-confirmation
// scenario of spec.md §8.
func (s *Server) reminderDeleteAllHandler(c *echo.Context) error {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if !req.Confirm {
		return echo.NewHTTPError(http.StatusBadRequest, "confirm must be true to delete all reminders")
	}
	if err := s.graph.DeleteAllReminders(c.Request().Context()); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// reminderMergeDuplicatesHandler handles POST /reminders/merge-duplicates.
func (s *Server) reminderMergeDuplicatesHandler(c *echo.Context) error {
	merged, err := s.graph.MergeDuplicateReminders(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"merged_count": merged})
}
