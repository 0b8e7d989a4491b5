// File: internal/infra/ledger/webhook_notifier.go
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"course-payment-service/internal/domain/model"
	"course-payment-service/internal/domain/ports/adapter"
	"course-payment-service/internal/infra/metrics"
)

var _ adapter.LedgerNotifier = (*WebhookNotifier)(nil)

// WebhookNotifier posts ledger records to the sheet automation webhook.
// A single POST per record; the caller decides whether to retry (it doesn't).
type WebhookNotifier struct {
	url    string
	apiKey string
	client *http.Client
}

func NewWebhookNotifier(url, apiKey string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (n *WebhookNotifier) Configured() bool { return n.url != "" }

func (n *WebhookNotifier) Send(ctx context.Context, rec model.LedgerRecord) error {
	body, err := json.Marshal(rec.Payload())
	if err != nil {
		metrics.IncLedgerNotify("error")
		return fmt.Errorf("marshal ledger record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		metrics.IncLedgerNotify("error")
		return fmt.Errorf("build ledger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("x-make-apikey", n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.IncLedgerNotify("error")
		return fmt.Errorf("send ledger record: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.IncLedgerNotify("error")
		return fmt.Errorf("ledger webhook returned %d", resp.StatusCode)
	}
	metrics.IncLedgerNotify("sent")
	return nil
}
