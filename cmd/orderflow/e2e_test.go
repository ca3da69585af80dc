//go:build e2e

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against live `orderflow intake` and `orderflow notifier` processes
// sharing one Kafka topic.

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, env, def string) *client {
	base := os.Getenv(env)
	if base == "" {
		base = def
	}
	return &client{t: t, base: base, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestE2E_OrderToNotification(t *testing.T) {
	intake := newClient(t, "ORDERFLOW_INTAKE_URL", "http://localhost:8080")
	notifier := newClient(t, "ORDERFLOW_NOTIFIER_URL", "http://localhost:8090")

	status, body := intake.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"userId": "e2e-user",
		"items": []map[string]any{
			{"id": "sku-1", "title": "Widget", "quantity": 2, "price": 9.99},
		},
		"customerEmail": "e2e@example.com",
		"customerName":  "E2E",
	})
	require.Equal(t, http.StatusCreated, status, "create failed: %v", body)
	order := body["data"].(map[string]any)
	orderID := order["orderId"].(string)
	assert.Equal(t, "PENDING", order["status"])
	assert.InDelta(t, 19.98, order["totalAmount"].(float64), 1e-9)

	var notifications []any
	require.Eventually(t, func() bool {
		status, body := notifier.do(http.MethodGet, "/api/v1/notifications/"+orderID, nil)
		if status != http.StatusOK {
			return false
		}
		notifications, _ = body["data"].(map[string]any)["notifications"].([]any)
		return len(notifications) > 0
	}, 30*time.Second, 500*time.Millisecond)

	rec := notifications[0].(map[string]any)
	assert.Equal(t, "CONFIRMATION", rec["type"])
	assert.Len(t, rec["perChannelOutcomes"], 2)

	status, _ = notifier.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
}
