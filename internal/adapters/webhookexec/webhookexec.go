// Package webhookexec executes plan actions against downstream systems over
// HTTP webhooks. One adapter instance serves one capability; the target
// endpoint owns idempotency-key dedup on its side.
package webhookexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/corridor/internal/dispatch"
)

const httpTimeout = 15 * time.Second

// Adapter posts actions to a configured webhook URL.
type Adapter struct {
	capability string
	url        string
	client     *http.Client
}

// New creates a webhook adapter for one capability.
func New(capability, url string) *Adapter {
	return &Adapter{
		capability: capability,
		url:        url,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Capability implements dispatch.Adapter.
func (a *Adapter) Capability() string {
	return a.capability
}

// request is the wire shape posted to the downstream endpoint.
type request struct {
	IdempotencyKey string         `json:"idempotency_key"`
	Capability     string         `json:"capability"`
	Parameters     map[string]any `json:"parameters,omitempty"`
}

// response is the expected downstream reply. Endpoints that return an empty
// or non-JSON body are treated as accepted with no reference.
type response struct {
	Status        string         `json:"status"`
	ReferenceID   string         `json:"reference_id"`
	EchoedPayload map[string]any `json:"echoed_payload,omitempty"`
}

// Execute implements dispatch.Adapter.
func (a *Adapter) Execute(ctx context.Context, idempotencyKey string, params map[string]any) (*dispatch.Result, error) {
	body, err := json.Marshal(request{
		IdempotencyKey: idempotencyKey,
		Capability:     a.capability,
		Parameters:     params,
	})
	if err != nil {
		return nil, fmt.Errorf("webhookexec: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webhookexec: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := a.client.Do(req) //nolint:gosec // G704: url is from trusted config, not user input
	if err != nil {
		return nil, fmt.Errorf("webhookexec: post %s: %w", a.capability, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("webhookexec: %s endpoint returned %d: %s", a.capability, resp.StatusCode, string(respBody))
	}

	var parsed response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&parsed); err != nil {
		parsed = response{Status: "accepted"}
	}
	if parsed.Status == "" {
		parsed.Status = "accepted"
	}
	return &dispatch.Result{
		Status:        parsed.Status,
		ReferenceID:   parsed.ReferenceID,
		EchoedPayload: parsed.EchoedPayload,
	}, nil
}
