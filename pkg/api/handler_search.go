package api

import (
	"context"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/pkg/router"
)

// SearchRequest is the POST /search/ request body (spec.md §6).
type SearchRequest struct {
	Query  string `json:"query"`
	Source string `json:"source"` // auto|vector|graph
	Limit  int    `json:"limit"`
}

// SearchResult is one hit returned by /search/, generic enough to carry
// either a vector-store point or a graph context line.
type SearchResult struct {
	Source  string         `json:"source"`
	Payload map[string]any `json:"payload"`
	Score   float64        `json:"score,omitempty"`
}

// searchHandler handles POST /search/: routes to the Vector Store or the
// Graph Service's person-context lookup, with source="auto" decided by
// the Smart Router (spec.md §4.6) — structured domain routes (debt,
// financial, inventory) resolve against the graph; everything else falls
// back to vector semantic search.
func (s *Server) searchHandler(c *echo.Context) error {
	var req SearchRequest
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	ctx := c.Request().Context()
	source := req.Source
	if source == "" || source == "auto" {
		route, err := s.router.Classify(ctx, req.Query)
		if err != nil {
			return mapServiceError(err)
		}
		source = routeToSource(route)
	}

	if source == "graph" {
		results, err := s.searchGraph(ctx, req.Query)
		if err != nil {
			return mapServiceError(err)
		}
		if len(results) > 0 {
			return c.JSON(http.StatusOK, map[string]any{"source": "graph", "results": results})
		}
		// No canonical entity matched; fall through to vector search
		// rather than returning an empty result for a graph route.
	}

	results, err := s.searchVector(ctx, req.Query, req.Limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"source": "vector", "results": results})
}

// routeToSource maps the Smart Router's domain-route classification onto
// the coarse vector/graph split the search endpoint exposes: structured
// domain routes resolve against the graph, general free text goes to
// vector semantic search.
func routeToSource(route router.Route) string {
	switch route {
	case router.RouteDebtPayment, router.RouteDebtSummary, router.RouteFinancialReport,
		router.RouteFinancial, router.RouteInventoryDuplicates, router.RouteInventoryReport,
		router.RouteInventoryMove, router.RouteInventoryUsage, router.RouteInventoryUnused,
		router.RouteInventoryQuery:
		return "graph"
	default:
		return "vector"
	}
}

func (s *Server) searchVector(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	points, err := s.pipeline.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(points))
	for _, p := range points {
		out = append(out, SearchResult{Source: "vector", Payload: p.Payload, Score: p.Score})
	}
	return out, nil
}

func (s *Server) searchGraph(ctx context.Context, query string) ([]SearchResult, error) {
	canonical, err := s.graph.ResolveEntityName(ctx, query, "Person")
	if err != nil || canonical == "" {
		return nil, nil
	}
	personCtx, err := s.graph.QueryPersonContext(ctx, canonical)
	if err != nil || personCtx == nil {
		return nil, nil
	}
	return []SearchResult{{
		Source: "graph",
		Payload: map[string]any{
			"name":       personCtx.Name,
			"name_ar":    personCtx.NameAr,
			"company":    personCtx.Company,
			"properties": personCtx.Properties,
		},
	}}, nil
}
