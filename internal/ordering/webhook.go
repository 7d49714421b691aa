package ordering

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"cafedash/internal/logger"
	"cafedash/pkg/models"
)

// maxResponseBody caps how much of a webhook response is kept.
const maxResponseBody = 1 << 20

// ErrWebhookRejected is returned by Submit when the webhook answers with a
// non-2xx status.
var ErrWebhookRejected = errors.New("order webhook rejected the order")

// Response is the webhook's answer, kept verbatim so it can be mirrored.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// WebhookClient posts orders to the order webhook.
type WebhookClient struct {
	httpClient *http.Client
	url        string
	log        zerolog.Logger
}

// NewWebhookClient creates a client for url. A zero timeout means no limit
// beyond the caller's context.
func NewWebhookClient(url string, timeout time.Duration) *WebhookClient {
	return &WebhookClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		log:        logger.WithComponent("webhook"),
	}
}

// Forward posts body unchanged and returns the webhook's answer whatever its
// status. Only transport failures are errors.
func (c *WebhookClient) Forward(ctx context.Context, body []byte) (*Response, error) {
	const op = "ordering.Forward"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Msg("Order webhook unreachable")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	c.log.Info().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("took", time.Since(start)).
		Msg("Order forwarded")

	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// Submit posts a composed order. A non-2xx answer is an error wrapping
// ErrWebhookRejected; the response is returned in both cases.
func (c *WebhookClient) Submit(ctx context.Context, order *models.PurchaseOrder) (*Response, error) {
	const op = "ordering.Submit"

	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode order: %w", op, err)
	}

	resp, err := c.Forward(ctx, body)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		msg := string(bytes.TrimSpace(resp.Body))
		if msg == "" {
			msg = http.StatusText(resp.Status)
		}
		return resp, fmt.Errorf("%s: %w: HTTP %d: %s", op, ErrWebhookRejected, resp.Status, msg)
	}

	c.log.Info().Str("order_id", order.ID).Float64("total", order.Total).Msg("Order submitted")
	return resp, nil
}
