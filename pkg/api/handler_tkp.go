package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/pkg/graph"
)

// tasksListHandler handles GET /tasks/?project&status.
func (s *Server) tasksListHandler(c *echo.Context) error {
	tasks, err := s.graph.QueryTasks(c.Request().Context(), c.QueryParam("project"), c.QueryParam("status"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// taskUpdateHandler handles POST /tasks/update.
func (s *Server) taskUpdateHandler(c *echo.Context) error {
	var req graph.TaskInput
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	id, err := s.graph.UpsertTask(c.Request().Context(), req)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// projectsListHandler handles GET /projects/.
func (s *Server) projectsListHandler(c *echo.Context) error {
	projects, err := s.graph.QueryProjectsOverview(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, projects)
}

// projectUpdateHandler handles POST /projects/update.
func (s *Server) projectUpdateHandler(c *echo.Context) error {
	var req graph.ProjectInput
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	id, err := s.graph.UpsertProject(c.Request().Context(), req)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// knowledgeListHandler handles GET /knowledge/?topic&category.
func (s *Server) knowledgeListHandler(c *echo.Context) error {
	items, err := s.graph.QueryKnowledge(c.Request().Context(), c.QueryParam("topic"), c.QueryParam("category"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// knowledgeUpdateHandler handles POST /knowledge/update.
func (s *Server) knowledgeUpdateHandler(c *echo.Context) error {
	var req graph.KnowledgeInput
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	id, err := s.graph.UpsertKnowledge(c.Request().Context(), req)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id})
}
