// Package router implements the Smart Router (spec.md §4.6): an
// ordered-by-specificity regex dispatch table that maps a user message to
// a route label, falling back to an LLM classify call on no match.
// Pattern-table structure is grounded on tarsy pkg/mcp/router.go's
// strict-format, single-responsibility matching idiom, generalized from
// tool-name parsing to free-text route classification.
package router

import (
	"context"
	"regexp"

	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
)

// Route is a Smart Router destination label.
type Route string

const (
	RouteDebtPayment       Route = "debt_payment"
	RouteDebtSummary       Route = "debt_summary"
	RouteFinancialReport   Route = "financial_report"
	RouteFinancial         Route = "financial"
	RouteInventoryDuplicates Route = "inventory_duplicates"
	RouteInventoryReport   Route = "inventory_report"
	RouteInventoryMove     Route = "inventory_move"
	RouteInventoryUsage    Route = "inventory_usage"
	RouteInventoryUnused   Route = "inventory_unused"
	RouteInventoryQuery    Route = "inventory_query"
	RouteGeneral           Route = "general"
)

type rule struct {
	route   Route
	pattern *regexp.Regexp
}

// rules is specificity-ordered: the first rule that matches wins. Order
// matters per spec.md §4.6 — "debt-payment before debt-summary before
// financial-report before financial; inventory duplicates before report
// before move before usage before unused before generic inventory query."
var rules = []rule{
	{RouteDebtPayment, regexp.MustCompile(`(?i)\b(paid|pay(ment)?|سدد|دفع)\b.*\b(debt|دين)\b|\b(debt|دين)\b.*\b(paid|pay(ment)?|سدد|دفع)\b`)},
	{RouteDebtSummary, regexp.MustCompile(`(?i)\b(debt|debts|owe|owed|دين|ديون)\b`)},
	{RouteFinancialReport, regexp.MustCompile(`(?i)\b(report|summary|تقرير|ملخص)\b.*\b(expense|spending|financ|مصروف|مالي)\b`)},
	{RouteFinancial, regexp.MustCompile(`(?i)\b(expense|spending|financ|budget|مصروف|مالي|ميزانية)\b`)},
	{RouteInventoryDuplicates, regexp.MustCompile(`(?i)\b(duplicate|duplicates|مكرر)\b.*\b(item|inventory|مخزون|غرض)\b`)},
	{RouteInventoryReport, regexp.MustCompile(`(?i)\b(inventory|مخزون)\b.*\b(report|summary|تقرير)\b`)},
	{RouteInventoryMove, regexp.MustCompile(`(?i)\b(move|moved|relocate|نقل)\b.*\b(item|inventory|مخزون|غرض)\b`)},
	{RouteInventoryUsage, regexp.MustCompile(`(?i)\b(use|used|usage|استخدام|استعمال)\b.*\b(item|inventory|مخزون|غرض)\b`)},
	{RouteInventoryUnused, regexp.MustCompile(`(?i)\b(unused|not used|لم يستخدم|غير مستخدم)\b`)},
	{RouteInventoryQuery, regexp.MustCompile(`(?i)\b(inventory|item|مخزون|غرض)\b`)},
}

// classifyCandidates is the label set handed to the LLM fallback when no
// rule matches.
var classifyCandidates = []string{
	string(RouteDebtPayment), string(RouteDebtSummary), string(RouteFinancialReport),
	string(RouteFinancial), string(RouteInventoryDuplicates), string(RouteInventoryReport),
	string(RouteInventoryMove), string(RouteInventoryUsage), string(RouteInventoryUnused),
	string(RouteInventoryQuery), string(RouteGeneral),
}

// Router dispatches free-text messages to a route label.
type Router struct {
	llm *llmgateway.Client
}

// New builds a Router.
func New(llm *llmgateway.Client) *Router {
	return &Router{llm: llm}
}

// Classify returns the first matching rule's route, in specificity
// order, falling back to an LLM classify call when nothing matches.
func (r *Router) Classify(ctx context.Context, message string) (Route, error) {
	for _, rl := range rules {
		if rl.pattern.MatchString(message) {
			return rl.route, nil
		}
	}

	label, err := r.llm.Classify(ctx, message, classifyCandidates)
	if err != nil {
		return RouteGeneral, err
	}
	return Route(label), nil
}
