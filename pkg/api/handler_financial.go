package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/pkg/graph"
)

// financialReportHandler handles GET /financial/report?month&year&compare.
func (s *Server) financialReportHandler(c *echo.Context) error {
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "month is required")
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "year is required")
	}
	compare, _ := strconv.ParseBool(c.QueryParam("compare"))

	report, err := s.graph.QueryFinancialReport(c.Request().Context(), month, year, compare)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, report)
}

// financialDebtsHandler handles GET /financial/debts.
func (s *Server) financialDebtsHandler(c *echo.Context) error {
	debts, err := s.graph.QueryDebts(c.Request().Context(), c.QueryParam("direction"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, debts)
}

// financialDebtPaymentHandler handles POST /financial/debts/payment.
func (s *Server) financialDebtPaymentHandler(c *echo.Context) error {
	var req struct {
		DebtID string  `json:"debt_id"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.DebtID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "debt_id is required")
	}

	if err := s.graph.PayDebt(c.Request().Context(), req.DebtID, req.Amount, req.Date); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// financialAlertsHandler handles GET /financial/alerts: debts overdue by
// the configured threshold, surfaced the same way the Proactive
// Scheduler does (spec.md §4.9 old-debts check).
func (s *Server) financialAlertsHandler(c *echo.Context) error {
	olderThanDays := s.cfg.Scheduler.OldDebtDays
	if v := c.QueryParam("older_than_days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			olderThanDays = n
		}
	}
	debts, err := s.graph.OldDebts(c.Request().Context(), olderThanDays)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string][]graph.Debt{"overdue_debts": debts})
}
