package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/internal/domain"
)

func TestWebhookNotifierSendsUrgentDigest(t *testing.T) {
	var received map[string]string
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second)
	n.Notify(context.Background(), []*domain.Alert{
		{ProductName: "Espresso Beans 1kg", Severity: domain.SeverityEmergency, Message: "out of stock", Priority: 1},
		{ProductName: "Oat Milk 1L", Severity: domain.SeverityCritical, Message: "runs out soon", Priority: 6},
		{ProductName: "Paper Cups", Severity: domain.SeverityWarning, Message: "monitor", Priority: 40},
		{ProductName: "Resolved One", Severity: domain.SeverityEmergency, Message: "handled", Priority: 1, Resolved: true},
	})

	require.Equal(t, 1, calls)
	text := received["text"]
	assert.Contains(t, text, "2 urgent")
	assert.Contains(t, text, "Espresso Beans 1kg - out of stock")
	assert.Contains(t, text, "Oat Milk 1L")
	assert.NotContains(t, text, "Paper Cups")
	assert.NotContains(t, text, "Resolved One")
}

func TestWebhookNotifierSkipsEmptyBatches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second)
	n.Notify(context.Background(), []*domain.Alert{
		{ProductName: "Paper Cups", Severity: domain.SeverityWarning},
	})

	assert.Equal(t, 0, calls)
}
