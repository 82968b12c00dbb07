package api

import (
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v5"
)

// morningSummaryHandler handles GET /proactive/morning-summary.
func (s *Server) morningSummaryHandler(c *echo.Context) error {
	text, err := s.proactive.MorningSummary(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": text})
}

// noonCheckinHandler handles GET /proactive/noon-checkin.
func (s *Server) noonCheckinHandler(c *echo.Context) error {
	text, err := s.proactive.NoonCheckin(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": text})
}

// eveningSummaryHandler handles GET /proactive/evening-summary.
func (s *Server) eveningSummaryHandler(c *echo.Context) error {
	text, err := s.proactive.EveningSummary(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": text})
}

// dueRemindersHandler handles GET /proactive/due-reminders.
func (s *Server) dueRemindersHandler(c *echo.Context) error {
	due, err := s.proactive.DueReminders(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, due)
}

// advanceReminderHandler handles POST /proactive/advance-reminder.
func (s *Server) advanceReminderHandler(c *echo.Context) error {
	var req struct {
		ID         string    `json:"id"`
		Title      string    `json:"title"`
		DueDate    time.Time `json:"due_date"`
		Type       string    `json:"type"`
		Recurrence string    `json:"recurrence"`
		Persistent bool      `json:"persistent"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	due, err := s.graph.DueReminders(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	for _, r := range due {
		if r.ID == req.ID {
			if err := s.proactive.AdvanceReminder(c.Request().Context(), r); err != nil {
				return mapServiceError(err)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "reminder not found among due reminders")
}

// stalledProjectsHandler handles GET /proactive/stalled-projects?stale_days.
func (s *Server) stalledProjectsHandler(c *echo.Context) error {
	staleDays := 14
	if v := c.QueryParam("stale_days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			staleDays = n
		}
	}
	projects, err := s.proactive.StalledProjects(c.Request().Context(), staleDays)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, projects)
}

// oldDebtsHandler handles GET /proactive/old-debts?older_than_days.
func (s *Server) oldDebtsHandler(c *echo.Context) error {
	olderThanDays := 30
	if v := c.QueryParam("older_than_days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			olderThanDays = n
		}
	}
	debts, err := s.proactive.OldDebts(c.Request().Context(), olderThanDays)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, debts)
}

// reschedulePersistentHandler handles POST /proactive/reschedule-persistent.
func (s *Server) reschedulePersistentHandler(c *echo.Context) error {
	var req struct {
		ID string `json:"id"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	due, err := s.graph.DueReminders(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	for _, r := range due {
		if r.ID == req.ID {
			if err := s.proactive.ReschedulePersistent(c.Request().Context(), r); err != nil {
				return mapServiceError(err)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "reminder not found among due reminders")
}
