package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rafiq-ai/rafiq/pkg/config"
	"github.com/rafiq-ai/rafiq/pkg/graph"
)

func TestCronSpecForLocalHourConvertsToUTC(t *testing.T) {
	sch := &Scheduler{cfg: config.Config{TimezoneOffsetHours: 3}}
	assert.Equal(t, "0 4 * * *", sch.cronSpecForLocalHour(7))
}

func TestCronSpecForLocalHourWrapsNegative(t *testing.T) {
	sch := &Scheduler{cfg: config.Config{TimezoneOffsetHours: 3}}
	assert.Equal(t, "0 22 * * *", sch.cronSpecForLocalHour(1))
}

func TestFormatSmartAlertsEmpty(t *testing.T) {
	assert.Equal(t, "", formatSmartAlerts(nil, nil))
}

func TestFormatSmartAlertsBothSections(t *testing.T) {
	stalled := []graph.StalledProject{{Name: "موقع الشركة", LastTaskUpdate: "2026-06-01"}}
	debts := []graph.Debt{{Person: "أحمد", Amount: 500, Currency: "SAR"}}
	got := formatSmartAlerts(stalled, debts)
	assert.Contains(t, got, "مشاريع متوقفة")
	assert.Contains(t, got, "ديون قديمة")
	assert.Contains(t, got, "أحمد")
}

func TestLogNotifierNeverErrors(t *testing.T) {
	assert.NoError(t, LogNotifier{}.Notify(context.Background(), "kind", "message"))
}
