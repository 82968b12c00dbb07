package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ExpenseInput is the add_expense payload.
type ExpenseInput struct {
	Amount   float64
	Currency string
	Category string // normalised on write
	Vendor   string
	Date     string
}

// UpsertExpense creates an Expense node (expenses are never merged; each
// is its own event).
func (s *Service) UpsertExpense(ctx context.Context, in ExpenseInput) (string, error) {
	id := uuid.NewString()
	_, err := s.store.Query(ctx, `
		CREATE (e:Expense {
			id: $id, amount: $amount, currency: $currency, category: $category,
			vendor: $vendor, date: $date, created_at: datetime()
		})`,
		map[string]any{
			"id":       id,
			"amount":   in.Amount,
			"currency": in.Currency,
			"category": normalizeCategory(in.Category),
			"vendor":   nilIfEmpty(in.Vendor),
			"date":     in.Date,
		})
	if err != nil {
		return "", fmt.Errorf("graph: upsert expense: %w", err)
	}
	return id, nil
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// FinancialReport is the result of query_financial_report / get_expense_report.
type FinancialReport struct {
	Month          int
	Year           int
	Total          float64
	ByCategory     map[string]float64
	PreviousTotal  float64 // only set when Compare is requested
}

// QueryFinancialReport sums expenses for the given month/year, optionally
// comparing against the previous month.
func (s *Service) QueryFinancialReport(ctx context.Context, month, year int, compare bool) (*FinancialReport, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (e:Expense)
		WHERE e.date STARTS WITH $prefix
		RETURN e.category AS category, e.amount AS amount`,
		map[string]any{"prefix": fmt.Sprintf("%04d-%02d", year, month)})
	if err != nil {
		return nil, fmt.Errorf("graph: query financial report: %w", err)
	}

	report := &FinancialReport{Month: month, Year: year, ByCategory: map[string]float64{}}
	for _, r := range rows {
		category, _ := r["category"].(string)
		amount := toFloat(r["amount"])
		report.ByCategory[category] += amount
		report.Total += amount
	}

	if compare {
		prevMonth, prevYear := month-1, year
		if prevMonth == 0 {
			prevMonth, prevYear = 12, year-1
		}
		prevRows, err := s.store.Query(ctx, `
			MATCH (e:Expense) WHERE e.date STARTS WITH $prefix RETURN sum(e.amount) AS total`,
			map[string]any{"prefix": fmt.Sprintf("%04d-%02d", prevYear, prevMonth)})
		if err != nil {
			return nil, fmt.Errorf("graph: query previous financial report: %w", err)
		}
		if len(prevRows) > 0 {
			report.PreviousTotal = toFloat(prevRows[0]["total"])
		}
	}
	return report, nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// debtDirections normalises any LLM-produced variant to the two canonical
// values, per spec.md §3 "Direction is normalised from any LLM variant".
var debtDirections = map[string]string{
	"i_owe":        "i_owe",
	"iowe":         "i_owe",
	"i owe":        "i_owe",
	"owed_to_me":   "owed_to_me",
	"owedtome":     "owed_to_me",
	"owed to me":   "owed_to_me",
	"they owe me":  "owed_to_me",
	"i owe them":   "i_owe",
}

// NormalizeDebtDirection maps any recognised LLM phrasing to i_owe or
// owed_to_me, defaulting to i_owe when unrecognised.
func NormalizeDebtDirection(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := debtDirections[key]; ok {
		return canonical
	}
	return "i_owe"
}

// DebtInput is the record_debt payload.
type DebtInput struct {
	Person    string
	Amount    float64
	Currency  string
	Direction string
	Reason    string
}

// RecordDebt resolves the person, creates a Debt node, and links it via
// OWES (directed per the resolved direction).
func (s *Service) RecordDebt(ctx context.Context, in DebtInput) (string, error) {
	personCanonical, err := s.ResolveEntityName(ctx, in.Person, "Person")
	if err != nil {
		return "", err
	}

	direction := NormalizeDebtDirection(in.Direction)
	id := uuid.NewString()

	_, err = s.store.Query(ctx, `
		MERGE (p:Person {name: $person})
		ON CREATE SET p.created_at = datetime()
		CREATE (d:Debt {
			id: $id, person: $person, amount: $amount, currency: $currency,
			direction: $direction, status: 'open', reason: $reason, created_at: datetime()
		})
		MERGE (p)-[:OWES]->(d)`,
		map[string]any{
			"person":    personCanonical,
			"id":        id,
			"amount":    in.Amount,
			"currency":  in.Currency,
			"direction": direction,
			"reason":    nilIfEmpty(in.Reason),
		})
	if err != nil {
		return "", fmt.Errorf("graph: record debt: %w", err)
	}
	return id, nil
}

// PayDebt applies a DebtPayment, reduces the Debt's remaining amount, and
// transitions status (open -> partial -> paid) when it reaches zero.
func (s *Service) PayDebt(ctx context.Context, debtID string, amount float64, date string) error {
	paymentID := uuid.NewString()
	_, err := s.store.Query(ctx, `
		MATCH (d:Debt {id: $debt_id})
		CREATE (pay:DebtPayment {id: $payment_id, debt_id: $debt_id, amount: $amount, date: $date, created_at: datetime()})
		MERGE (d)-[:HAS_ENTRY]->(pay)
		WITH d, d.amount - $amount AS remaining
		SET d.amount = remaining,
		    d.status = CASE WHEN remaining <= 0 THEN 'paid' WHEN $amount > 0 THEN 'partial' ELSE d.status END,
		    d.updated_at = datetime()`,
		map[string]any{"debt_id": debtID, "payment_id": paymentID, "amount": amount, "date": date})
	if err != nil {
		return fmt.Errorf("graph: pay debt: %w", err)
	}
	return nil
}

// Debt is one row of query_debts / get_debt_summary.
type Debt struct {
	ID        string
	Person    string
	Amount    float64
	Currency  string
	Direction string
	Status    string
	Reason    string
	CreatedAt string
}

// QueryDebts lists debts, optionally filtered by direction ("" = both).
func (s *Service) QueryDebts(ctx context.Context, direction string) ([]Debt, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (d:Debt)
		WHERE ($direction = '' OR d.direction = $direction) AND d.status <> 'paid'
		RETURN d ORDER BY d.created_at DESC`,
		map[string]any{"direction": direction})
	if err != nil {
		return nil, fmt.Errorf("graph: query debts: %w", err)
	}
	out := make([]Debt, 0, len(rows))
	for _, r := range rows {
		props, _ := r["d"].(map[string]any)
		out = append(out, debtFromProps(props))
	}
	return out, nil
}

func debtFromProps(props map[string]any) Debt {
	id, _ := props["id"].(string)
	person, _ := props["person"].(string)
	currency, _ := props["currency"].(string)
	direction, _ := props["direction"].(string)
	status, _ := props["status"].(string)
	reason, _ := props["reason"].(string)
	createdAt, _ := props["created_at"].(string)
	return Debt{
		ID: id, Person: person, Amount: toFloat(props["amount"]),
		Currency: currency, Direction: direction, Status: status,
		Reason: reason, CreatedAt: createdAt,
	}
}

// OldDebts returns open debts created more than olderThanDays ago, used by
// the scheduler's smart-alerts job (spec.md §4.9).
func (s *Service) OldDebts(ctx context.Context, olderThanDays int) ([]Debt, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (d:Debt)
		WHERE d.status <> 'paid' AND d.created_at < datetime() - duration({days: $days})
		RETURN d ORDER BY d.created_at`,
		map[string]any{"days": olderThanDays})
	if err != nil {
		return nil, fmt.Errorf("graph: old debts: %w", err)
	}
	out := make([]Debt, 0, len(rows))
	for _, r := range rows {
		props, _ := r["d"].(map[string]any)
		out = append(out, debtFromProps(props))
	}
	return out, nil
}
