// internal/alert/notifier.go
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/rs/zerolog/log"
)

// Notifier delivers a batch of urgent alerts. Fire-and-forget: there is no
// delivery guarantee and failures are only logged.
type Notifier interface {
	Notify(ctx context.Context, alerts []*domain.Alert)
}

// WebhookNotifier posts a formatted alert digest to a chat webhook.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Notify sends only unresolved EMERGENCY and CRITICAL alerts. Empty batches
// send nothing.
func (n *WebhookNotifier) Notify(ctx context.Context, alerts []*domain.Alert) {
	urgent := make([]*domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.Resolved {
			continue
		}
		if a.Severity == domain.SeverityEmergency || a.Severity == domain.SeverityCritical {
			urgent = append(urgent, a)
		}
	}
	if len(urgent) == 0 {
		return
	}

	SortByPriority(urgent)

	payload, err := json.Marshal(map[string]string{"text": formatDigest(urgent)})
	if err != nil {
		log.Error().Err(err).Msg("notifier: encode digest failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		log.Error().Err(err).Msg("notifier: build request failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Int("alerts", len(urgent)).Msg("notifier: delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Int("alerts", len(urgent)).Msg("notifier: delivery rejected")
		return
	}

	log.Info().Int("alerts", len(urgent)).Msg("notifier: digest delivered")
}

func formatDigest(alerts []*domain.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Replenishment alerts (%d urgent)\n", len(alerts))
	for _, a := range alerts {
		fmt.Fprintf(&b, "[%s] %s - %s (%s)\n", a.Severity, a.ProductName, a.Message, a.RecommendedAction)
	}
	return b.String()
}

// NoopNotifier is used when no webhook is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, []*domain.Alert) {}
