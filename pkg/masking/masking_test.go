package masking

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskRedactsNationalID(t *testing.T) {
	svc := New()
	got := svc.Mask("رقم الهوية 1098765432 يخص أحمد")
	assert.Contains(t, got, "[ID_REDACTED]")
	assert.NotContains(t, got, "1098765432")
}

func TestMaskRedactsPhoneNumber(t *testing.T) {
	svc := New()
	got := svc.Mask("اتصل على 0551234567 من فضلك")
	assert.Contains(t, got, "[PHONE_REDACTED]")
	assert.NotContains(t, got, "0551234567")
}

func TestMaskRedactsEmail(t *testing.T) {
	svc := New()
	got := svc.Mask("راسلني على user@example.com")
	assert.Contains(t, got, "[EMAIL_REDACTED]")
}

func TestMaskLeavesOrdinaryTextUntouched(t *testing.T) {
	svc := New()
	assert.Equal(t, "اشترِ حليب وبيض", svc.Mask("اشترِ حليب وبيض"))
}

func TestMaskEmptyString(t *testing.T) {
	svc := New()
	assert.Equal(t, "", svc.Mask(""))
}

func TestHandlerRedactsMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.NewJSONHandler(&buf, nil), New())
	logger := slog.New(h)

	logger.Info("تذكير لـ 0551234567", "national_id", "1098765432")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded["msg"], "[PHONE_REDACTED]")
	assert.Equal(t, "[ID_REDACTED]", decoded["national_id"])
}

func TestHandlerEnabledDelegates(t *testing.T) {
	inner := slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	h := NewHandler(inner, New())
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
}
