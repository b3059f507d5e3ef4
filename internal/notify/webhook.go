// Package notify delivers best-effort run summaries to an external
// webhook and fires once-daily reload triggers. Nothing here is ever
// fatal to a run.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/TurtIeSocks/account-manager/internal/domain/model"
)

const requestTimeout = 5 * time.Second

const embedColor = 5814783

type embedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields"`
	Timestamp string       `json:"timestamp"`
}

type webhookPayload struct {
	Content     any     `json:"content"`
	Embeds      []embed `json:"embeds"`
	Attachments []any   `json:"attachments"`
}

// Notifier posts run summaries to a webhook. A Notifier with an empty URL
// sends nothing.
type Notifier struct {
	url    string
	client *http.Client
	now    func() time.Time
}

func NewNotifier(url string) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
		now:    time.Now,
	}
}

// Send posts two display groups: this run's creation/promotion counts and
// each destination's cumulative matured count. destinations gives the
// reporting order; matured may be missing entries for destinations whose
// count query failed.
func (n *Notifier) Send(ctx context.Context, stats model.RunStats, destinations []string, matured map[string]int64) error {
	if n.url == "" {
		return nil
	}

	ts := n.now().UTC().Format(time.RFC3339)

	runFields := []embedField{
		{Name: "Number of Level 0s Created", Value: strconv.Itoa(stats.NewAccounts)},
		{Name: "Number of Level 30s Created", Value: strconv.Itoa(stats.NewThirties)},
	}
	for _, name := range destinations {
		runFields = append(runFields, embedField{
			Name:  "Number of Level 30s Added to " + name,
			Value: strconv.Itoa(stats.Routed[name]),
		})
	}

	freshFields := make([]embedField, 0, len(destinations))
	for _, name := range destinations {
		total, ok := matured[name]
		if !ok {
			continue
		}
		freshFields = append(freshFields, embedField{
			Name:  "Number of Level 30s in " + name,
			Value: strconv.FormatInt(total, 10),
		})
	}

	payload := webhookPayload{
		Content: nil,
		Embeds: []embed{
			{Title: "Leveling Stats", Color: embedColor, Fields: runFields, Timestamp: ts},
			{Title: "Fresh Accounts", Color: embedColor, Fields: freshFields, Timestamp: ts},
		},
		Attachments: []any{},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
