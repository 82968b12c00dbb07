package api

import (
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/pkg/graph"
)

// sprintsListHandler handles GET /productivity/sprints?project.
func (s *Server) sprintsListHandler(c *echo.Context) error {
	velocity, err := s.graph.QuerySprintVelocity(c.Request().Context(), c.QueryParam("project"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, velocity)
}

// sprintUpsertHandler handles POST /productivity/sprints.
func (s *Server) sprintUpsertHandler(c *echo.Context) error {
	var req graph.SprintInput
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	id, err := s.graph.UpsertSprint(c.Request().Context(), req)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// sprintBurndownHandler handles GET /productivity/sprints/{name}/burndown.
func (s *Server) sprintBurndownHandler(c *echo.Context) error {
	burndown, err := s.graph.QuerySprintBurndown(c.Request().Context(), c.Param("name"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, burndown)
}

// sprintVelocityHandler handles GET /productivity/sprints/velocity?project.
func (s *Server) sprintVelocityHandler(c *echo.Context) error {
	velocity, err := s.graph.QuerySprintVelocity(c.Request().Context(), c.QueryParam("project"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, velocity)
}

// focusStartHandler handles POST /productivity/focus/start.
func (s *Server) focusStartHandler(c *echo.Context) error {
	var req struct {
		Task string `json:"task"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.Task == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task is required")
	}
	id, err := s.graph.StartFocusSession(c.Request().Context(), req.Task, time.Now().UTC())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// focusCompleteHandler handles POST /productivity/focus/{id}/complete.
func (s *Server) focusCompleteHandler(c *echo.Context) error {
	if err := s.graph.CompleteFocusSession(c.Request().Context(), c.Param("id"), time.Now().UTC()); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// focusStatsHandler handles GET /productivity/focus/stats?task.
func (s *Server) focusStatsHandler(c *echo.Context) error {
	stats, err := s.graph.QueryFocusStats(c.Request().Context(), c.QueryParam("task"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// timeblockSuggestHandler handles POST /productivity/timeblock/suggest:
// proposes sequential hour-long slots for today's not-yet-done tasks,
// since no dedicated scheduling query exists in the Graph Service.
func (s *Server) timeblockSuggestHandler(c *echo.Context) error {
	plan, err := s.graph.QueryDailyPlan(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}

	type suggestion struct {
		Task      string `json:"task"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	cursor := time.Now().UTC().Truncate(time.Hour)
	suggestions := make([]suggestion, 0, len(plan.Tasks))
	for _, t := range plan.Tasks {
		if t.Status == "done" || t.Status == "cancelled" {
			continue
		}
		start := cursor
		end := start.Add(time.Hour)
		suggestions = append(suggestions, suggestion{
			Task:      t.Name,
			StartTime: start.Format(time.RFC3339),
			EndTime:   end.Format(time.RFC3339),
		})
		cursor = end
	}
	return c.JSON(http.StatusOK, suggestions)
}

// timeblockApplyHandler handles POST /productivity/timeblock/apply:
// persists a chosen start/end window onto a task.
func (s *Server) timeblockApplyHandler(c *echo.Context) error {
	var req struct {
		Task      string `json:"task"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.Task == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task is required")
	}
	in := graph.TaskInput{Name: req.Task, StartTime: req.StartTime, EndTime: req.EndTime}
	if _, err := s.graph.UpsertTask(c.Request().Context(), in); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
