package scheduler

import (
	"fmt"
	"strings"

	"github.com/rafiq-ai/rafiq/pkg/graph"
)

func formatSmartAlerts(stalled []graph.StalledProject, debts []graph.Debt) string {
	var b strings.Builder

	if len(stalled) > 0 {
		b.WriteString("مشاريع متوقفة:\n")
		for _, p := range stalled {
			fmt.Fprintf(&b, "- %s (آخر نشاط: %s)\n", p.Name, p.LastTaskUpdate)
		}
	}
	if len(debts) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("ديون قديمة:\n")
		for _, d := range debts {
			fmt.Fprintf(&b, "- %s: %.2f %s\n", d.Person, d.Amount, d.Currency)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
